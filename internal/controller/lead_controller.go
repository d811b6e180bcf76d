// internal/controller/lead_controller.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/draftloop/outreach-backend/internal/errors"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/service"
)

// ProspectingRunner triggers one on-demand prospecting pass.
type ProspectingRunner interface {
	RunOnce(ctx context.Context) error
}

type LeadController struct {
	LeadService *service.LeadService
	Prospecting ProspectingRunner
}

func (c *LeadController) UploadLeads(w http.ResponseWriter, r *http.Request) {
	var leads []model.Lead
	if err := json.NewDecoder(r.Body).Decode(&leads); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.LeadService.UploadLeads(leads)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("📥 Upload merged %d/%d leads", result.Inserted, result.Received)
	json.NewEncoder(w).Encode(result)
}

func (c *LeadController) ListContacted(w http.ResponseWriter, r *http.Request) {
	leads, err := c.LeadService.ListContacted()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(leads)
}

func (c *LeadController) UpdateStatusByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var body struct {
		Status model.LeadStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	lead, err := c.LeadService.UpdateStatusByEmail(email, body.Status)
	if err != nil {
		var notFound *appErrors.ErrLeadNotFound
		var invalid *model.InvalidTransitionError
		switch {
		case errors.As(err, &notFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &invalid):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	json.NewEncoder(w).Encode(lead)
}

// StartScraping kicks off one prospecting pass in the background and
// returns immediately; merged leads surface through the normal pipeline.
func (c *LeadController) StartScraping(w http.ResponseWriter, r *http.Request) {
	if c.Prospecting == nil {
		http.Error(w, "prospecting is not configured", http.StatusServiceUnavailable)
		return
	}
	go func() {
		if err := c.Prospecting.RunOnce(context.Background()); err != nil {
			log.Println("⚠️ Prospecting run failed:", err)
		}
	}()
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "scraping started"})
}
