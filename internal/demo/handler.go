package demo

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/statusgarden/sandbox/internal/pkg/httputil"
)

// Handler exposes the tracker and the sweep over HTTP. The cleanup
// endpoint is the hook for the external scheduler.
type Handler struct {
	tracker *Tracker
	sweeper *Sweeper
}

// NewHandler creates a new demo handler.
func NewHandler(tracker *Tracker, sweeper *Sweeper) *Handler {
	return &Handler{tracker: tracker, sweeper: sweeper}
}

// RegisterRoutes registers the demo routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/demo", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Post("/cleanup", h.Cleanup)
	})
}

// ListItems handles GET /demo/items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	listing := h.tracker.List(r.Context())
	httputil.Success(w, http.StatusOK, listing)
}

// Cleanup handles POST /demo/cleanup: runs one sweep and returns the
// report. Per-item upstream failures are part of the report, not an
// error response.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	report := h.sweeper.Sweep(r.Context())
	httputil.Success(w, http.StatusOK, report)
}
