// Package incidents implements the incident lifecycle: creation, status
// updates, the append-mostly update log, and deletion.
package incidents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/store"
)

// Service implements incident business logic over the state store.
//
// Status and impact values are passed through as given: the sandbox does
// not enforce a transition order or reject values outside the enum, the
// consumer is expected to validate. Resolving an incident does not reset
// its components either; projection handles that on the next read.
type Service struct {
	store   *store.Store
	tracker *demo.Tracker
}

// NewService creates a new incident service.
func NewService(st *store.Store, tracker *demo.Tracker) *Service {
	return &Service{store: st, tracker: tracker}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Name       string
	Status     domain.IncidentStatus
	Impact     domain.IncidentImpact
	Body       string
	Components ComponentsPayload
}

// UpdateEntryInput holds data for appending an incident update. Omitted
// fields default to the incident's current status and empty body, with
// display_at defaulting to now.
type UpdateEntryInput struct {
	Status    *domain.IncidentStatus
	Body      *string
	DisplayAt *time.Time
}

// UpdateIncidentInput holds data for updating an incident. When
// IncidentUpdate is set the operation appends to the update log and
// promotes the incident status (add-update mode); otherwise the provided
// fields are shallow-merged into the record (replace mode).
type UpdateIncidentInput struct {
	Name           *string
	Status         *domain.IncidentStatus
	Impact         *domain.IncidentImpact
	Components     *ComponentsPayload
	IncidentUpdate *UpdateEntryInput
}

// EditUpdateInput holds the editable fields of an existing update entry.
// Status and created_at are immutable once written.
type EditUpdateInput struct {
	Body      *string
	DisplayAt *time.Time
}

// CreateIncident creates an incident, normalizes its components payload
// (writing claimed statuses through to the store for the map form) and
// seeds the update log with an entry mirroring the creation.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	now := time.Now().UTC()

	status := input.Status
	if status == "" {
		status = domain.IncidentStatusInvestigating
	}
	impact := input.Impact
	if impact == "" {
		impact = domain.ImpactMinor
	}

	incident := domain.Incident{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Status:    status,
		Impact:    impact,
		CreatedAt: now,
		UpdatedAt: now,
		IncidentUpdates: []domain.IncidentUpdate{{
			ID:        uuid.NewString(),
			Status:    status,
			Body:      input.Body,
			DisplayAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}},
	}

	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		snapshots, _ := input.Components.normalize(ctx, doc, now)
		if snapshots == nil {
			snapshots = []domain.ComponentSnapshot{}
		}
		incident.Components = snapshots
		incident.ComponentIDs = snapshotIDs(snapshots)
		doc.Incidents = append(doc.Incidents, incident)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, demo.KindIncident, incident.ID)
	return &incident, nil
}

// GetIncident retrieves an incident by id.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	var incident *domain.Incident
	err := s.store.View(ctx, func(doc *store.Document) error {
		found := doc.FindIncident(id)
		if found == nil {
			return ErrIncidentNotFound
		}
		cloned := *found
		incident = &cloned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// ListIncidents retrieves all incidents in stored order.
func (s *Service) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	var incidents []domain.Incident
	err := s.store.View(ctx, func(doc *store.Document) error {
		incidents = append([]domain.Incident{}, doc.Incidents...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

// UpdateIncident applies either an add-update or a replace operation.
func (s *Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput) (*domain.Incident, error) {
	now := time.Now().UTC()

	var result domain.Incident
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		incident := doc.FindIncident(id)
		if incident == nil {
			return false, ErrIncidentNotFound
		}

		if input.IncidentUpdate != nil {
			s.appendUpdate(incident, *input.IncidentUpdate, now)
		} else {
			s.mergeFields(ctx, doc, incident, input, now)
		}

		incident.UpdatedAt = now
		result = *incident
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// appendUpdate appends a new update entry and promotes the incident's
// top-level status to the entry's status.
func (s *Service) appendUpdate(incident *domain.Incident, entry UpdateEntryInput, now time.Time) {
	status := incident.Status
	if entry.Status != nil {
		status = *entry.Status
	}
	body := ""
	if entry.Body != nil {
		body = *entry.Body
	}
	displayAt := now
	if entry.DisplayAt != nil {
		displayAt = *entry.DisplayAt
	}

	incident.IncidentUpdates = append(incident.IncidentUpdates, domain.IncidentUpdate{
		ID:        uuid.NewString(),
		Status:    status,
		Body:      body,
		DisplayAt: displayAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	incident.Status = status
}

// mergeFields shallow-merges the provided fields into the incident. A
// components payload that normalizes to an empty array leaves the prior
// array untouched, guarding against accidental wipes from partial
// payloads.
func (s *Service) mergeFields(ctx context.Context, doc *store.Document, incident *domain.Incident, input UpdateIncidentInput, now time.Time) {
	if input.Name != nil {
		incident.Name = *input.Name
	}
	if input.Status != nil {
		incident.Status = *input.Status
	}
	if input.Impact != nil {
		incident.Impact = *input.Impact
	}
	if input.Components != nil && !input.Components.IsZero() {
		snapshots, _ := input.Components.normalize(ctx, doc, now)
		if len(snapshots) > 0 {
			incident.Components = snapshots
			incident.ComponentIDs = snapshotIDs(snapshots)
		}
	}
}

// EditUpdate edits an existing update entry in place. Only body and
// display_at may change.
func (s *Service) EditUpdate(ctx context.Context, incidentID, updateID string, input EditUpdateInput) (*domain.IncidentUpdate, error) {
	now := time.Now().UTC()

	var result domain.IncidentUpdate
	err := s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		incident := doc.FindIncident(incidentID)
		if incident == nil {
			return false, ErrIncidentNotFound
		}

		var entry *domain.IncidentUpdate
		for i := range incident.IncidentUpdates {
			if incident.IncidentUpdates[i].ID == updateID {
				entry = &incident.IncidentUpdates[i]
				break
			}
		}
		if entry == nil {
			return false, ErrUpdateNotFound
		}

		changed := false
		if input.Body != nil && entry.Body != *input.Body {
			entry.Body = *input.Body
			changed = true
		}
		if input.DisplayAt != nil && !entry.DisplayAt.Equal(*input.DisplayAt) {
			entry.DisplayAt = *input.DisplayAt
			changed = true
		}
		if changed {
			entry.UpdatedAt = now
			incident.UpdatedAt = now
		}
		result = *entry
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteIncident removes an incident by id.
func (s *Service) DeleteIncident(ctx context.Context, id string) error {
	return s.store.Mutate(ctx, func(doc *store.Document) (bool, error) {
		for i := range doc.Incidents {
			if doc.Incidents[i].ID == id {
				doc.Incidents = append(doc.Incidents[:i], doc.Incidents[i+1:]...)
				return true, nil
			}
		}
		return false, ErrIncidentNotFound
	})
}
