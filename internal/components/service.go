// Package components provides CRUD over status-page components. Every
// read reconciles component statuses against open incidents before
// returning data.
package components

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/ctxlog"
	"github.com/statusgarden/sandbox/internal/projection"
	"github.com/statusgarden/sandbox/internal/store"
)

// ErrComponentNotFound is returned when a component id does not exist.
var ErrComponentNotFound = errors.New("component not found")

// LiveLister lists components from the live system for seed imports.
type LiveLister interface {
	ListComponents(ctx context.Context) ([]domain.Component, error)
}

// Service implements component business logic over the state store.
type Service struct {
	store   *store.Store
	tracker *demo.Tracker
	live    LiveLister
}

// NewService creates a new component service.
func NewService(st *store.Store, tracker *demo.Tracker, live LiveLister) *Service {
	return &Service{store: st, tracker: tracker, live: live}
}

// CreateComponentInput holds data for creating a component.
type CreateComponentInput struct {
	Name        string
	Status      domain.ComponentStatus
	Description string
	Group       bool
	GroupID     *string
}

// UpdateComponentInput holds data for updating a component. Nil fields
// are left untouched.
type UpdateComponentInput struct {
	Name        *string
	Status      *domain.ComponentStatus
	Description *string
	GroupID     *string
}

// ListComponents returns all components after reconciling their statuses
// against open incidents. The reconciled document is persisted only when
// projection changed something.
func (s *Service) ListComponents(ctx context.Context) ([]domain.Component, error) {
	var components []domain.Component
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		changed := projection.Reconcile(ctx, doc.Components, doc.Incidents, time.Now().UTC())
		components = append([]domain.Component{}, doc.Components...)
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return components, nil
}

// GetComponent returns one component, reconciled the same way as a list.
// Projection results are persisted even when the lookup misses.
func (s *Service) GetComponent(ctx context.Context, id string) (*domain.Component, error) {
	var component *domain.Component
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		changed := projection.Reconcile(ctx, doc.Components, doc.Incidents, time.Now().UTC())
		if found := doc.FindComponent(id); found != nil {
			cloned := *found
			component = &cloned
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, ErrComponentNotFound
	}
	return component, nil
}

// CreateComponent creates a component.
func (s *Service) CreateComponent(ctx context.Context, input CreateComponentInput) (*domain.Component, error) {
	now := time.Now().UTC()

	status := input.Status
	if status == "" {
		status = domain.ComponentStatusOperational
	}

	component := domain.Component{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Status:      status,
		Group:       input.Group,
		GroupID:     input.GroupID,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		doc.Components = append(doc.Components, component)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, demo.KindComponent, component.ID)
	return &component, nil
}

// UpdateComponent shallow-merges the provided fields into a component.
func (s *Service) UpdateComponent(ctx context.Context, id string, input UpdateComponentInput) (*domain.Component, error) {
	now := time.Now().UTC()

	var result domain.Component
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		component := doc.FindComponent(id)
		if component == nil {
			return false, ErrComponentNotFound
		}

		if input.Name != nil {
			component.Name = *input.Name
		}
		if input.Status != nil {
			component.Status = *input.Status
		}
		if input.Description != nil {
			component.Description = *input.Description
		}
		if input.GroupID != nil {
			component.GroupID = input.GroupID
		}
		component.UpdatedAt = now
		result = *component
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteComponent removes a component by id.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	return s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		for i := range doc.Components {
			if doc.Components[i].ID == id {
				doc.Components = append(doc.Components[:i], doc.Components[i+1:]...)
				return true, nil
			}
		}
		return false, ErrComponentNotFound
	})
}

// Seed fills the store from the live system's component list. Idempotent:
// a store that already has components is left alone unless force is set.
// Returns the number of imported components, or -1 when skipped.
func (s *Service) Seed(ctx context.Context, force bool) (int, error) {
	imported := -1
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		if len(doc.Components) > 0 && !force {
			return false, nil
		}

		live, err := s.live.ListComponents(ctx)
		if err != nil {
			return false, fmt.Errorf("list live components: %w", err)
		}

		doc.Components = live
		imported = len(live)
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	if imported >= 0 {
		ctxlog.FromContext(ctx).Info("seeded components from live system", "count", imported, "forced", force)
	}
	return imported, nil
}
