// Package templates provides keyed CRUD over incident message templates.
package templates

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/store"
)

// ErrTemplateNotFound is returned when a template id does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// Service implements template CRUD over the state store.
type Service struct {
	store   *store.Store
	tracker *demo.Tracker
}

// NewService creates a new template service.
func NewService(st *store.Store, tracker *demo.Tracker) *Service {
	return &Service{store: st, tracker: tracker}
}

// CreateTemplate assigns a fresh id and stores the template. Caller
// fields are merged over the defaults; a template without an explicit
// update_status starts at the status a fresh incident would.
func (s *Service) CreateTemplate(ctx context.Context, tmpl domain.Template) (*domain.Template, error) {
	tmpl.ID = uuid.NewString()
	if tmpl.UpdateStatus == "" {
		tmpl.UpdateStatus = domain.IncidentStatusInvestigating
	}

	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		doc.Templates = append(doc.Templates, tmpl)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, demo.KindTemplate, tmpl.ID)
	return &tmpl, nil
}

// GetTemplate retrieves a template by id.
func (s *Service) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	var tmpl *domain.Template
	err := s.store.View(ctx, func(doc *store.Document) error {
		found := doc.FindTemplate(id)
		if found == nil {
			return ErrTemplateNotFound
		}
		cloned := *found
		tmpl = &cloned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// ListTemplates retrieves all templates.
func (s *Service) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	var out []domain.Template
	err := s.store.View(ctx, func(doc *store.Document) error {
		out = append([]domain.Template{}, doc.Templates...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTemplateInput holds the shallow-merge payload for a template.
type UpdateTemplateInput struct {
	Name         *string
	Body         *string
	UpdateStatus *domain.IncidentStatus
	Extra        map[string]json.RawMessage
}

// UpdateTemplate shallow-merges the provided fields into a template.
func (s *Service) UpdateTemplate(ctx context.Context, id string, input UpdateTemplateInput) (*domain.Template, error) {
	var result domain.Template
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		tmpl := doc.FindTemplate(id)
		if tmpl == nil {
			return false, ErrTemplateNotFound
		}

		if input.Name != nil {
			tmpl.Name = *input.Name
		}
		if input.Body != nil {
			tmpl.Body = *input.Body
		}
		if input.UpdateStatus != nil {
			tmpl.UpdateStatus = *input.UpdateStatus
		}
		for k, v := range input.Extra {
			if tmpl.Extra == nil {
				tmpl.Extra = make(map[string]json.RawMessage)
			}
			tmpl.Extra[k] = v
		}
		result = *tmpl
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTemplate removes a template by id.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		for i := range doc.Templates {
			if doc.Templates[i].ID == id {
				doc.Templates = append(doc.Templates[:i], doc.Templates[i+1:]...)
				return true, nil
			}
		}
		return false, ErrTemplateNotFound
	})
}
