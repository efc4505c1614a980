package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", "state.json"))
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	doc := s.Load(context.Background())

	require.NotNil(t, doc)
	assert.Empty(t, doc.Components)
	assert.Empty(t, doc.Incidents)
	assert.Empty(t, doc.Templates)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := New(path)

	doc := s.Load(context.Background())

	require.NotNil(t, doc)
	assert.Empty(t, doc.Components)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := NewDocument()
	doc.Components = append(doc.Components, domain.Component{
		ID:     "c1",
		Name:   "API",
		Status: domain.ComponentStatusOperational,
	})
	doc.Incidents = append(doc.Incidents, domain.Incident{
		ID:     "i1",
		Name:   "API down",
		Status: domain.IncidentStatusInvestigating,
		Components: []domain.ComponentSnapshot{
			{ID: "c1", Name: "API", Status: domain.ComponentStatusMajor},
		},
		ComponentIDs: []string{"c1"},
	})

	require.NoError(t, s.Save(ctx, doc))

	loaded := s.Load(ctx)
	assert.Equal(t, doc.Components, loaded.Components)
	require.Len(t, loaded.Incidents, 1)
	assert.Equal(t, "API down", loaded.Incidents[0].Name)
	assert.Equal(t, []string{"c1"}, loaded.Incidents[0].ComponentIDs)
}

func TestSave_CreatesDirectory(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(context.Background(), NewDocument()))

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestMutate_NoWriteWhenUnchanged(t *testing.T) {
	s := newTestStore(t)

	err := s.Mutate(context.Background(), func(doc *Document) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "unchanged mutate must not create the file")
}

func TestMutate_WritesOnChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Mutate(ctx, func(doc *Document) (bool, error) {
		doc.Templates = append(doc.Templates, domain.Template{ID: "t1", Name: "maintenance"})
		return true, nil
	})
	require.NoError(t, err)

	loaded := s.Load(ctx)
	require.Len(t, loaded.Templates, 1)
	assert.Equal(t, "maintenance", loaded.Templates[0].Name)
}

func TestMutate_ErrorDiscardsChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sentinel := errors.New("boom")

	err := s.Mutate(ctx, func(doc *Document) (bool, error) {
		doc.Components = append(doc.Components, domain.Component{ID: "c1"})
		return true, sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Empty(t, s.Load(ctx).Components)
}

func TestDocument_Finders(t *testing.T) {
	doc := NewDocument()
	doc.Components = append(doc.Components, domain.Component{ID: "c1"})
	doc.Incidents = append(doc.Incidents, domain.Incident{ID: "i1"})
	doc.Templates = append(doc.Templates, domain.Template{ID: "t1"})

	assert.NotNil(t, doc.FindComponent("c1"))
	assert.Nil(t, doc.FindComponent("c2"))
	assert.NotNil(t, doc.FindIncident("i1"))
	assert.Nil(t, doc.FindIncident("i2"))
	assert.NotNil(t, doc.FindTemplate("t1"))
	assert.Nil(t, doc.FindTemplate("t2"))
}
