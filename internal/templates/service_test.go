package templates

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/statusgarden/sandbox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "state.json"))
	tracker := demo.NewTracker(filepath.Join(dir, "tracker.json"), false)
	return NewService(st, tracker), st
}

func TestCreateTemplate(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, domain.Template{
		Name: "maintenance window",
		Body: "We will be performing scheduled maintenance.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.IncidentStatusInvestigating, created.UpdateStatus)

	require.Len(t, st.Load(ctx).Templates, 1)
}

func TestCreateTemplate_ExplicitUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateTemplate(context.Background(), domain.Template{
		Name:         "monitoring",
		UpdateStatus: domain.IncidentStatusMonitoring,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IncidentStatusMonitoring, created.UpdateStatus)
}

func TestTemplate_ExtraFieldsRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var tmpl domain.Template
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "custom",
		"body": "text",
		"should_tweet": true,
		"group_id": "g1"
	}`), &tmpl))

	created, err := svc.CreateTemplate(ctx, tmpl)
	require.NoError(t, err)

	fetched, err := svc.GetTemplate(ctx, created.ID)
	require.NoError(t, err)

	data, err := json.Marshal(fetched)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, true, out["should_tweet"])
	assert.Equal(t, "g1", out["group_id"])
	assert.Equal(t, "custom", out["name"])
}

func TestUpdateTemplate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, domain.Template{Name: "old", Body: "old body"})
	require.NoError(t, err)

	name := "new"
	updated, err := svc.UpdateTemplate(ctx, created.ID, UpdateTemplateInput{
		Name:  &name,
		Extra: map[string]json.RawMessage{"priority": json.RawMessage(`3`)},
	})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "old body", updated.Body, "shallow merge keeps omitted fields")
	assert.Equal(t, json.RawMessage(`3`), updated.Extra["priority"])
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateTemplate(context.Background(), "nope", UpdateTemplateInput{})

	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDeleteTemplate(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, domain.Template{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(ctx, created.ID))
	assert.Empty(t, st.Load(ctx).Templates)

	assert.ErrorIs(t, svc.DeleteTemplate(ctx, created.ID), ErrTemplateNotFound)
}

func TestListTemplates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, domain.Template{Name: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTemplate(ctx, domain.Template{Name: "b"})
	require.NoError(t, err)

	listed, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
