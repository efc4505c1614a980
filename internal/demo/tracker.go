// Package demo tracks entities created while demo mode is active and
// sweeps them out of the live system.
package demo

import (
	"context"
	"encoding/json"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/statusgarden/sandbox/internal/pkg/ctxlog"
	"github.com/statusgarden/sandbox/internal/pkg/metrics"
	"github.com/statusgarden/sandbox/internal/store"
)

// Kind identifies a tracked entity collection.
type Kind string

// Tracked kinds.
const (
	KindIncident  Kind = "incidents"
	KindComponent Kind = "components"
	KindTemplate  Kind = "templates"
)

// Document is the persisted tracker state.
type Document struct {
	Incidents  []string   `json:"incidents"`
	Components []string   `json:"components"`
	Templates  []string   `json:"templates"`
	// LastCleanup is stamped after every completed sweep, including empty
	// ones.
	LastCleanup *time.Time `json:"lastCleanup"`
}

func newDocument() *Document {
	return &Document{
		Incidents:  []string{},
		Components: []string{},
		Templates:  []string{},
	}
}

func (d *Document) kind(kind Kind) *[]string {
	switch kind {
	case KindIncident:
		return &d.Incidents
	case KindComponent:
		return &d.Components
	case KindTemplate:
		return &d.Templates
	}
	return nil
}

// Tracker records ids of demo-created entities in its own small JSON
// document. All writes are gated on the process-wide demo flag, injected
// at construction so tests can flip it deterministically.
type Tracker struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// NewTracker creates a tracker over the given file path.
func NewTracker(path string, enabled bool) *Tracker {
	return &Tracker{path: path, enabled: enabled}
}

// Enabled reports whether demo mode is active.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Track records an entity id. A no-op when demo mode is off or the id is
// already tracked. Failures are logged, never surfaced: tracking is
// opportunistic and must not fail the mutation that triggered it.
func (t *Tracker) Track(ctx context.Context, kind Kind, id string) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	doc := t.load(ctx)
	ids := doc.kind(kind)
	if ids == nil || slices.Contains(*ids, id) {
		return
	}
	*ids = append(*ids, id)
	t.save(ctx, doc)
}

// Remove untracks an entity id.
func (t *Tracker) Remove(ctx context.Context, kind Kind, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc := t.load(ctx)
	ids := doc.kind(kind)
	if ids == nil || !slices.Contains(*ids, id) {
		return
	}
	*ids = slices.DeleteFunc(*ids, func(s string) bool { return s == id })
	t.save(ctx, doc)
}

// List returns a snapshot of the tracked ids.
func (t *Tracker) List(ctx context.Context) Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.load(ctx)
}

// StampCleanup records the completion time of a sweep.
func (t *Tracker) StampCleanup(ctx context.Context, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc := t.load(ctx)
	doc.LastCleanup = &at
	t.save(ctx, doc)
}

func (t *Tracker) load(ctx context.Context) *Document {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			ctxlog.FromContext(ctx).Warn("tracker document unreadable, starting empty",
				"path", t.path, "error", err)
			metrics.StateDocumentRecoveries.WithLabelValues("tracker", "unreadable").Inc()
		}
		return newDocument()
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		ctxlog.FromContext(ctx).Warn("tracker document unparsable, starting empty",
			"path", t.path, "error", err)
		metrics.StateDocumentRecoveries.WithLabelValues("tracker", "unparsable").Inc()
		return newDocument()
	}
	if doc.Incidents == nil {
		doc.Incidents = []string{}
	}
	if doc.Components == nil {
		doc.Components = []string{}
	}
	if doc.Templates == nil {
		doc.Templates = []string{}
	}
	return doc
}

func (t *Tracker) save(ctx context.Context, doc *Document) {
	if err := store.WriteDocument(t.path, doc); err != nil {
		ctxlog.FromContext(ctx).Error("failed to write tracker document",
			"path", t.path, "error", err)
		return
	}
	metrics.StateDocumentWrites.WithLabelValues("tracker").Inc()
}
