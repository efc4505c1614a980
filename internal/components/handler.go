package components

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/httputil"
)

// Handler handles HTTP requests for components.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new components handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all component routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/components", func(r chi.Router) {
		r.Get("/", h.ListComponents)
		r.Post("/", h.CreateComponent)
		r.Get("/{id}", h.GetComponent)
		r.Patch("/{id}", h.UpdateComponent)
		r.Put("/{id}", h.UpdateComponent)
		r.Delete("/{id}", h.DeleteComponent)
	})
}

// CreateComponentRequest represents the request body for creating a
// component. Status values outside the enum pass through untouched.
type CreateComponentRequest struct {
	Name        string                 `json:"name" validate:"required,min=1,max=255"`
	Status      domain.ComponentStatus `json:"status"`
	Description string                 `json:"description"`
	Group       bool                   `json:"group"`
	GroupID     *string                `json:"group_id"`
}

// UpdateComponentRequest represents the request body for updating a
// component.
type UpdateComponentRequest struct {
	Name        *string                 `json:"name" validate:"omitempty,min=1,max=255"`
	Status      *domain.ComponentStatus `json:"status"`
	Description *string                 `json:"description"`
	GroupID     *string                 `json:"group_id"`
}

// ListComponents handles GET /components. With ?initialize=true the store
// is seeded from the live system first (only when empty, unless
// force=true).
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("initialize") == "true" {
		force := r.URL.Query().Get("force") == "true"
		if _, err := h.service.Seed(r.Context(), force); err != nil {
			httputil.Error(w, http.StatusBadGateway, "seed import failed")
			return
		}
	}

	components, err := h.service.ListComponents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, components)
}

// GetComponent handles GET /components/{id}.
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	component, err := h.service.GetComponent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, component)
}

// CreateComponent handles POST /components.
func (h *Handler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	component, err := h.service.CreateComponent(r.Context(), CreateComponentInput{
		Name:        req.Name,
		Status:      req.Status,
		Description: req.Description,
		Group:       req.Group,
		GroupID:     req.GroupID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusCreated, component)
}

// UpdateComponent handles PATCH/PUT /components/{id}.
func (h *Handler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req UpdateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	component, err := h.service.UpdateComponent(r.Context(), chi.URLParam(r, "id"), UpdateComponentInput{
		Name:        req.Name,
		Status:      req.Status,
		Description: req.Description,
		GroupID:     req.GroupID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, component)
}

// DeleteComponent handles DELETE /components/{id}.
func (h *Handler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteComponent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrComponentNotFound, Status: http.StatusNotFound},
	})
}
