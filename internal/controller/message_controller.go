// internal/controller/message_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/draftloop/outreach-backend/internal/errors"
	"github.com/draftloop/outreach-backend/internal/service"
)

type MessageController struct {
	ReviewService *service.ReviewService
}

func messageID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (c *MessageController) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := c.ReviewService.ListPending()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(pending)
}

func (c *MessageController) respondReviewed(w http.ResponseWriter, msg any, err error) {
	if err != nil {
		var notFound *appErrors.ErrMessageNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(msg)
}

func (c *MessageController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	msg, err := c.ReviewService.Approve(id)
	c.respondReviewed(w, msg, err)
}

func (c *MessageController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	msg, err := c.ReviewService.Reject(id)
	c.respondReviewed(w, msg, err)
}

func (c *MessageController) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	msg, err := c.ReviewService.EditContent(id, body.Content)
	c.respondReviewed(w, msg, err)
}

// SaveDraft is the intake for reply drafts produced outside the pipeline.
func (c *MessageController) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LeadID   int    `json:"lead_id"`
		Content  string `json:"content"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	msg, err := c.ReviewService.SaveReplyDraft(body.LeadID, body.Content, body.ThreadID)
	if err != nil {
		var notFound *appErrors.ErrLeadNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}
