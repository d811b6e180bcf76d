// internal/controller/router.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the approval UI API.
func NewRouter(leads *LeadController, messages *MessageController) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/leads/upload", leads.UploadLeads)
		r.Get("/leads/contacted", leads.ListContacted)
		r.Put("/leads/status/by-email/{email}", leads.UpdateStatusByEmail)
		r.Get("/leads/start-scraping", leads.StartScraping)

		r.Get("/messages/pending", messages.ListPending)
		r.Put("/messages/{id}/approve", messages.Approve)
		r.Put("/messages/{id}/reject", messages.Reject)
		r.Put("/messages/{id}", messages.UpdateContent)

		r.Post("/drafts", messages.SaveDraft)
	})

	return r
}
