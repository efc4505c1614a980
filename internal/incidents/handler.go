package incidents

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/httputil"
)

// Handler handles HTTP requests for incidents.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all incident routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/{id}", h.GetIncident)
		r.Patch("/{id}", h.UpdateIncident)
		r.Put("/{id}", h.UpdateIncident)
		r.Delete("/{id}", h.DeleteIncident)
		r.Patch("/{id}/updates/{updateID}", h.EditUpdate)
	})
}

// CreateIncidentRequest represents the request body for creating an
// incident. Status and impact are not checked against the enums here;
// unknown values pass through to the document as-is.
type CreateIncidentRequest struct {
	Name       string                `json:"name" validate:"required,min=1,max=255"`
	Status     domain.IncidentStatus `json:"status"`
	Impact     domain.IncidentImpact `json:"impact"`
	Body       string                `json:"body"`
	Components ComponentsPayload     `json:"components"`
}

// UpdateEntryRequest represents the incident_update object of an
// add-update request.
type UpdateEntryRequest struct {
	Status    *domain.IncidentStatus `json:"status"`
	Body      *string                `json:"body"`
	DisplayAt *time.Time             `json:"display_at"`
}

// UpdateIncidentRequest represents the request body for updating an
// incident. The presence of incident_update selects add-update mode.
type UpdateIncidentRequest struct {
	Name           *string                `json:"name" validate:"omitempty,min=1,max=255"`
	Status         *domain.IncidentStatus `json:"status"`
	Impact         *domain.IncidentImpact `json:"impact"`
	Components     *ComponentsPayload     `json:"components"`
	IncidentUpdate *UpdateEntryRequest    `json:"incident_update"`
}

// EditUpdateRequest represents the request body for editing an existing
// update entry.
type EditUpdateRequest struct {
	Body      *string    `json:"body"`
	DisplayAt *time.Time `json:"display_at"`
}

// CreateIncident handles POST /incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), CreateIncidentInput{
		Name:       req.Name,
		Status:     req.Status,
		Impact:     req.Impact,
		Body:       req.Body,
		Components: req.Components,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.service.ListIncidents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, incidents)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// UpdateIncident handles PATCH/PUT /incidents/{id}.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateIncidentInput{
		Name:       req.Name,
		Status:     req.Status,
		Impact:     req.Impact,
		Components: req.Components,
	}
	if req.IncidentUpdate != nil {
		input.IncidentUpdate = &UpdateEntryInput{
			Status:    req.IncidentUpdate.Status,
			Body:      req.IncidentUpdate.Body,
			DisplayAt: req.IncidentUpdate.DisplayAt,
		}
	}

	incident, err := h.service.UpdateIncident(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// EditUpdate handles PATCH /incidents/{id}/updates/{updateID}.
func (h *Handler) EditUpdate(w http.ResponseWriter, r *http.Request) {
	var req EditUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	entry, err := h.service.EditUpdate(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "updateID"), EditUpdateInput{
		Body:      req.Body,
		DisplayAt: req.DisplayAt,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, entry)
}

// DeleteIncident handles DELETE /incidents/{id}.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteIncident(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrUpdateNotFound, Status: http.StatusNotFound},
	})
}
