// Package store provides the synthetic state store: a lazily created,
// whole-document JSON file holding components, incidents and templates.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/pkg/ctxlog"
	"github.com/statusgarden/sandbox/internal/pkg/metrics"
)

const documentName = "state"

// Document is the full persisted state. It is always read and written as
// a unit; there is no partial-write API.
type Document struct {
	Components []domain.Component `json:"components"`
	Incidents  []domain.Incident  `json:"incidents"`
	Templates  []domain.Template  `json:"templates"`
}

// NewDocument returns the zero-value document with non-nil collections.
func NewDocument() *Document {
	return &Document{
		Components: []domain.Component{},
		Incidents:  []domain.Incident{},
		Templates:  []domain.Template{},
	}
}

// Store is a mutex-guarded handle over the backing file. The mutex makes
// read-modify-write cycles single-writer within this process; cross-process
// races remain possible and the later writer wins.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store over the given file path. The file and its directory
// are created lazily on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full document. A missing or unparsable file yields the
// zero-value document: data loss is tolerated here, logged and counted but
// never surfaced as an error.
func (s *Store) Load(ctx context.Context) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			ctxlog.FromContext(ctx).Warn("state document unreadable, starting empty",
				"path", s.path, "error", err)
			metrics.StateDocumentRecoveries.WithLabelValues(documentName, "unreadable").Inc()
		}
		return NewDocument()
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		ctxlog.FromContext(ctx).Warn("state document unparsable, starting empty",
			"path", s.path, "error", err)
		metrics.StateDocumentRecoveries.WithLabelValues(documentName, "unparsable").Inc()
		return NewDocument()
	}

	doc.normalize()
	return doc
}

// Save serializes the full document and replaces the backing file.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

func (s *Store) save(ctx context.Context, doc *Document) error {
	if err := WriteDocument(s.path, doc); err != nil {
		return err
	}
	metrics.StateDocumentWrites.WithLabelValues(documentName).Inc()
	ctxlog.FromContext(ctx).Debug("state document written",
		"path", s.path,
		"components", len(doc.Components),
		"incidents", len(doc.Incidents),
		"templates", len(doc.Templates),
	)
	return nil
}

// View runs fn against a snapshot of the document under the store lock.
func (s *Store) View(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.load(ctx))
}

// Mutate runs a read-modify-write cycle under the store lock. The document
// is persisted only when fn reports a change, so idempotent operations do
// not touch the file.
func (s *Store) Mutate(ctx context.Context, fn func(doc *Document) (changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	changed, err := fn(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(ctx, doc)
}

// WriteDocument marshals v and replaces the file at path, creating the
// directory on first write. The temp-file rename keeps a crashed write from
// truncating the previous document.
func WriteDocument(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (d *Document) normalize() {
	if d.Components == nil {
		d.Components = []domain.Component{}
	}
	if d.Incidents == nil {
		d.Incidents = []domain.Incident{}
	}
	if d.Templates == nil {
		d.Templates = []domain.Template{}
	}
}

// FindComponent returns a pointer into Components for the given id, or nil.
func (d *Document) FindComponent(id string) *domain.Component {
	for i := range d.Components {
		if d.Components[i].ID == id {
			return &d.Components[i]
		}
	}
	return nil
}

// FindIncident returns a pointer into Incidents for the given id, or nil.
func (d *Document) FindIncident(id string) *domain.Incident {
	for i := range d.Incidents {
		if d.Incidents[i].ID == id {
			return &d.Incidents[i]
		}
	}
	return nil
}

// FindTemplate returns a pointer into Templates for the given id, or nil.
func (d *Document) FindTemplate(id string) *domain.Template {
	for i := range d.Templates {
		if d.Templates[i].ID == id {
			return &d.Templates[i]
		}
	}
	return nil
}
