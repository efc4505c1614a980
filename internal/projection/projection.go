// Package projection reconciles stored component statuses against the set
// of currently open incidents.
package projection

import (
	"context"
	"time"

	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/ctxlog"
	"github.com/statusgarden/sandbox/internal/pkg/metrics"
)

// Reconcile rewrites component statuses in place so that each component
// reflects the union of open incidents claiming to affect it, and reports
// whether anything changed. Callers persist only on change.
//
// When two open incidents disagree about the same component, the claim of
// the last-iterated incident wins; iteration order is the stored incident
// order. Tests pin this precedence; do not replace it with severity-based
// precedence without checking every consumer of the projected statuses.
func Reconcile(ctx context.Context, components []domain.Component, incidents []domain.Incident, now time.Time) bool {
	affected := affectedSet(incidents)

	changed := false

	// Reset pass: components no open incident claims go back to operational.
	for i := range components {
		c := &components[i]
		if _, ok := affected[c.ID]; ok {
			continue
		}
		if c.Status != domain.ComponentStatusOperational {
			c.Status = domain.ComponentStatusOperational
			c.UpdatedAt = now
			changed = true
			metrics.ProjectionChanges.Inc()
		}
	}

	// Apply pass: claimed statuses overwrite stale stored ones. A claim for
	// a component missing from the store is skipped, never materialized.
	for id, status := range affected {
		c := findComponent(components, id)
		if c == nil {
			ctxlog.FromContext(ctx).Debug("projection skipping unknown component", "component_id", id)
			continue
		}
		if c.Status != status {
			c.Status = status
			c.UpdatedAt = now
			changed = true
			metrics.ProjectionChanges.Inc()
		}
	}

	return changed
}

// affectedSet collects (component id -> claimed status) over all open
// incidents. Later incidents overwrite earlier claims, which is what makes
// the last-iterated incident win.
func affectedSet(incidents []domain.Incident) map[string]domain.ComponentStatus {
	affected := make(map[string]domain.ComponentStatus)
	for i := range incidents {
		inc := &incidents[i]
		if !inc.IsOpen() {
			continue
		}
		for _, snap := range inc.Components {
			if snap.Status == domain.ComponentStatusOperational {
				continue
			}
			affected[snap.ID] = snap.Status
		}
	}
	return affected
}

func findComponent(components []domain.Component, id string) *domain.Component {
	for i := range components {
		if components[i].ID == id {
			return &components[i]
		}
	}
	return nil
}
