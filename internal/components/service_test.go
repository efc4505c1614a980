package components

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLiveLister implements LiveLister for seed import tests.
type mockLiveLister struct {
	components []domain.Component
	err        error
	calls      int
}

func (m *mockLiveLister) ListComponents(_ context.Context) ([]domain.Component, error) {
	m.calls++
	return m.components, m.err
}

func newTestService(t *testing.T, live LiveLister) (*Service, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "state.json"))
	tracker := demo.NewTracker(filepath.Join(dir, "tracker.json"), false)
	if live == nil {
		live = &mockLiveLister{}
	}
	return NewService(st, tracker, live), st
}

func TestCreateGetComponent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "API"})
	require.NoError(t, err)
	assert.Equal(t, domain.ComponentStatusOperational, created.Status)

	fetched, err := svc.GetComponent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	_, err = svc.GetComponent(ctx, "nope")
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestUpdateComponent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "API"})
	require.NoError(t, err)

	status := domain.ComponentStatusMaintenance
	desc := "planned work"
	updated, err := svc.UpdateComponent(ctx, created.ID, UpdateComponentInput{
		Status:      &status,
		Description: &desc,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComponentStatusMaintenance, updated.Status)
	assert.Equal(t, "planned work", updated.Description)
	assert.Equal(t, "API", updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestDeleteComponent(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "API"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComponent(ctx, created.ID))
	assert.Empty(t, st.Load(ctx).Components)

	assert.ErrorIs(t, svc.DeleteComponent(ctx, created.ID), ErrComponentNotFound)
}

// Reads must reconcile against open incidents before returning data:
// resolving an incident does not reset components by itself.
func TestListComponents_RunsProjection(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "API"})
	require.NoError(t, err)

	err = st.Mutate(ctx, func(doc *store.Document) (bool, error) {
		doc.Incidents = append(doc.Incidents, domain.Incident{
			ID:     "i1",
			Status: domain.IncidentStatusInvestigating,
			Components: []domain.ComponentSnapshot{
				{ID: created.ID, Name: created.Name, Status: domain.ComponentStatusPartial},
			},
		})
		return true, nil
	})
	require.NoError(t, err)

	listed, err := svc.ListComponents(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ComponentStatusPartial, listed[0].Status)

	// Resolve the incident without touching the component.
	err = st.Mutate(ctx, func(doc *store.Document) (bool, error) {
		doc.Incidents[0].Status = domain.IncidentStatusResolved
		return true, nil
	})
	require.NoError(t, err)

	listed, err = svc.ListComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ComponentStatusOperational, listed[0].Status)

	// The reconciled status was persisted, not just returned.
	assert.Equal(t, domain.ComponentStatusOperational, st.Load(ctx).FindComponent(created.ID).Status)
}

func TestSeed_FillsEmptyStore(t *testing.T) {
	live := &mockLiveLister{components: []domain.Component{
		{ID: "c1", Name: "API", Status: domain.ComponentStatusOperational},
		{ID: "c2", Name: "DB", Status: domain.ComponentStatusOperational},
	}}
	svc, st := newTestService(t, live)
	ctx := context.Background()

	imported, err := svc.Seed(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 2, imported)
	assert.Len(t, st.Load(ctx).Components, 2)
}

func TestSeed_IdempotentWhenPopulated(t *testing.T) {
	live := &mockLiveLister{components: []domain.Component{{ID: "c9", Name: "Live"}}}
	svc, st := newTestService(t, live)
	ctx := context.Background()

	_, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "Existing"})
	require.NoError(t, err)

	imported, err := svc.Seed(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, -1, imported, "seed must be skipped")
	assert.Equal(t, 0, live.calls)
	require.Len(t, st.Load(ctx).Components, 1)
	assert.Equal(t, "Existing", st.Load(ctx).Components[0].Name)
}

func TestSeed_ForceReplaces(t *testing.T) {
	live := &mockLiveLister{components: []domain.Component{{ID: "c9", Name: "Live"}}}
	svc, st := newTestService(t, live)
	ctx := context.Background()

	_, err := svc.CreateComponent(ctx, CreateComponentInput{Name: "Existing"})
	require.NoError(t, err)

	imported, err := svc.Seed(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 1, imported)
	require.Len(t, st.Load(ctx).Components, 1)
	assert.Equal(t, "Live", st.Load(ctx).Components[0].Name)
}

func TestSeed_UpstreamFailure(t *testing.T) {
	live := &mockLiveLister{err: errors.New("connection refused")}
	svc, st := newTestService(t, live)
	ctx := context.Background()

	_, err := svc.Seed(ctx, false)

	require.Error(t, err)
	assert.Empty(t, st.Load(ctx).Components, "a failed seed must not write")
}
