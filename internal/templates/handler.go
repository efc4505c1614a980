package templates

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/httputil"
)

// Handler handles HTTP requests for templates.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new templates handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all template routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.ListTemplates)
		r.Post("/", h.CreateTemplate)
		r.Get("/{id}", h.GetTemplate)
		r.Patch("/{id}", h.UpdateTemplate)
		r.Put("/{id}", h.UpdateTemplate)
		r.Delete("/{id}", h.DeleteTemplate)
	})
}

// CreateTemplate handles POST /templates. The body is decoded as a full
// template so free-form extra fields survive the round trip.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl domain.Template
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if tmpl.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.service.CreateTemplate(r.Context(), tmpl)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusCreated, created)
}

// ListTemplates handles GET /templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, out)
}

// GetTemplate handles GET /templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.service.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, tmpl)
}

// UpdateTemplateRequest represents the request body for updating a
// template.
type UpdateTemplateRequest struct {
	Name         *string                    `json:"name" validate:"omitempty,min=1,max=255"`
	Body         *string                    `json:"body"`
	UpdateStatus *domain.IncidentStatus     `json:"update_status"`
	Extra        map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON captures unknown fields alongside the known ones.
func (r *UpdateTemplateRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateTemplateRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = UpdateTemplateRequest(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "name")
	delete(raw, "body")
	delete(raw, "update_status")
	delete(raw, "id")
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// UpdateTemplate handles PATCH/PUT /templates/{id}.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	tmpl, err := h.service.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), UpdateTemplateInput{
		Name:         req.Name,
		Body:         req.Body,
		UpdateStatus: req.UpdateStatus,
		Extra:        req.Extra,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, tmpl)
}

// DeleteTemplate handles DELETE /templates/{id}.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrTemplateNotFound, Status: http.StatusNotFound},
	})
}
