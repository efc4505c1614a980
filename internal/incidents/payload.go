package incidents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/store"
)

// ComponentsPayload is the dual-shape affected-components input: either a
// map of component id to claimed status or an array of component
// snapshots. It is normalized to the snapshot array form at the boundary;
// the map form never reaches the domain model.
type ComponentsPayload struct {
	Map   map[string]domain.ComponentStatus
	Array []domain.ComponentSnapshot
}

// IsZero reports whether no components payload was supplied.
func (p *ComponentsPayload) IsZero() bool {
	return p.Map == nil && p.Array == nil
}

// UnmarshalJSON accepts either the map or the array shape.
func (p *ComponentsPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &p.Array)
	case '{':
		return json.Unmarshal(trimmed, &p.Map)
	}
	return fmt.Errorf("components must be an object or an array")
}

// MarshalJSON emits whichever shape was supplied, preferring the array.
func (p ComponentsPayload) MarshalJSON() ([]byte, error) {
	if p.Array != nil {
		return json.Marshal(p.Array)
	}
	if p.Map != nil {
		return json.Marshal(p.Map)
	}
	return []byte("null"), nil
}

// normalize turns the payload into the canonical snapshot array. For the
// map form each claimed status is also written through to the stored
// component (the map form is how callers both declare and apply impact);
// a component absent from the store yields a stub snapshot and is never
// materialized. The array form passes through untouched.
//
// Returns the snapshots and whether any stored component was mutated.
func (p *ComponentsPayload) normalize(ctx context.Context, doc *store.Document, now time.Time) ([]domain.ComponentSnapshot, bool) {
	if p.Array != nil {
		return p.Array, false
	}
	if p.Map == nil {
		return nil, false
	}

	// Map iteration order is random; sort ids so the stored snapshot
	// order is stable across runs.
	ids := make([]string, 0, len(p.Map))
	for id := range p.Map {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	changed := false
	snapshots := make([]domain.ComponentSnapshot, 0, len(ids))
	for _, id := range ids {
		status := p.Map[id]
		c := doc.FindComponent(id)
		if c == nil {
			snapshots = append(snapshots, domain.ComponentSnapshot{
				ID:     id,
				Name:   "Component " + id,
				Status: status,
			})
			continue
		}
		if c.Status != status {
			c.Status = status
			c.UpdatedAt = now
			changed = true
		}
		snapshots = append(snapshots, domain.ComponentSnapshot{
			ID:     c.ID,
			Name:   c.Name,
			Status: status,
		})
	}
	return snapshots, changed
}

func snapshotIDs(snapshots []domain.ComponentSnapshot) []string {
	ids := make([]string, 0, len(snapshots))
	for _, s := range snapshots {
		ids = append(ids, s.ID)
	}
	return ids
}
