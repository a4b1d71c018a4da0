package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/taskservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *taskservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/stale", h.ListStale)
		r.Get("/carryover-candidates", h.ListCarryoverCandidates)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Patch("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
			r.Get("/children", h.ListChildren)
			r.Post("/children", h.CreateChild)
			r.Post("/complete", h.CompleteTask)
			r.Get("/completion-log", h.CompletionLog)
			r.Get("/convergence", h.Convergence)
			r.Post("/carryover", h.Carryover)

			r.Get("/checklist", h.ListChecklist)
			r.Post("/checklist", h.CreateChecklistItem)
			r.Patch("/checklist/{itemID}", h.UpdateChecklistItem)
			r.Delete("/checklist/{itemID}", h.DeleteChecklistItem)
			r.Post("/checklist/{itemID}/extract", h.ExtractChecklistItem)
		})
	})

	r.Route("/captures", func(r chi.Router) {
		r.Get("/", h.ListCaptures)
		r.Post("/", h.CreateCapture)
		r.Patch("/{id}", h.UpdateCapture)
		r.Delete("/{id}", h.DeleteCapture)
		r.Post("/{id}/promote", h.PromoteCapture)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
