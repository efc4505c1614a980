package projection

import (
	"context"
	"testing"
	"time"

	"github.com/statusgarden/sandbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func component(id string, status domain.ComponentStatus) domain.Component {
	return domain.Component{ID: id, Name: "Component " + id, Status: status}
}

func incident(status domain.IncidentStatus, snaps ...domain.ComponentSnapshot) domain.Incident {
	return domain.Incident{ID: "inc-" + string(status), Status: status, Components: snaps}
}

func snap(id string, status domain.ComponentStatus) domain.ComponentSnapshot {
	return domain.ComponentSnapshot{ID: id, Name: "Component " + id, Status: status}
}

func TestReconcile_AppliesClaimedStatus(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{component("a", domain.ComponentStatusOperational)}
	incidents := []domain.Incident{
		incident(domain.IncidentStatusInvestigating, snap("a", domain.ComponentStatusPartial)),
	}

	changed := Reconcile(context.Background(), components, incidents, now)

	require.True(t, changed)
	assert.Equal(t, domain.ComponentStatusPartial, components[0].Status)
	assert.Equal(t, now, components[0].UpdatedAt)
}

func TestReconcile_ResetsUnclaimedComponents(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{
		component("a", domain.ComponentStatusMajor),
		component("b", domain.ComponentStatusOperational),
	}

	changed := Reconcile(context.Background(), components, nil, now)

	require.True(t, changed)
	assert.Equal(t, domain.ComponentStatusOperational, components[0].Status)
	assert.Equal(t, now, components[0].UpdatedAt)
	// b was already operational and must not be touched
	assert.True(t, components[1].UpdatedAt.IsZero())
}

func TestReconcile_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{
		component("a", domain.ComponentStatusOperational),
		component("b", domain.ComponentStatusDegraded),
	}
	incidents := []domain.Incident{
		incident(domain.IncidentStatusIdentified, snap("a", domain.ComponentStatusMajor)),
	}

	require.True(t, Reconcile(context.Background(), components, incidents, now))
	first := append([]domain.Component{}, components...)

	changed := Reconcile(context.Background(), components, incidents, now.Add(time.Minute))

	assert.False(t, changed, "second run must be a no-op")
	assert.Equal(t, first, components)
}

func TestReconcile_ClosedIncidentsExcluded(t *testing.T) {
	tests := []struct {
		name   string
		status domain.IncidentStatus
	}{
		{"resolved", domain.IncidentStatusResolved},
		{"postmortem", domain.IncidentStatusPostmortem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now().UTC()
			components := []domain.Component{component("a", domain.ComponentStatusMajor)}
			// The closed incident still lists a non-operational snapshot;
			// it must not keep the component down.
			incidents := []domain.Incident{
				incident(tt.status, snap("a", domain.ComponentStatusMajor)),
			}

			changed := Reconcile(context.Background(), components, incidents, now)

			require.True(t, changed)
			assert.Equal(t, domain.ComponentStatusOperational, components[0].Status)
		})
	}
}

// TestReconcile_LastIncidentWins pins the inherited tie-break: when two
// open incidents claim the same component, the later one in stored order
// wins, regardless of severity.
func TestReconcile_LastIncidentWins(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{component("a", domain.ComponentStatusOperational)}
	incidents := []domain.Incident{
		incident(domain.IncidentStatusInvestigating, snap("a", domain.ComponentStatusMajor)),
		incident(domain.IncidentStatusMonitoring, snap("a", domain.ComponentStatusDegraded)),
	}

	changed := Reconcile(context.Background(), components, incidents, now)

	require.True(t, changed)
	assert.Equal(t, domain.ComponentStatusDegraded, components[0].Status)
}

func TestReconcile_OperationalSnapshotsDoNotClaim(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{component("a", domain.ComponentStatusDegraded)}
	incidents := []domain.Incident{
		incident(domain.IncidentStatusInvestigating, snap("a", domain.ComponentStatusOperational)),
	}

	changed := Reconcile(context.Background(), components, incidents, now)

	// a is not in the affected set, so the reset pass applies.
	require.True(t, changed)
	assert.Equal(t, domain.ComponentStatusOperational, components[0].Status)
}

func TestReconcile_MissingComponentSkipped(t *testing.T) {
	now := time.Now().UTC()
	components := []domain.Component{component("a", domain.ComponentStatusOperational)}
	incidents := []domain.Incident{
		incident(domain.IncidentStatusInvestigating, snap("ghost", domain.ComponentStatusMajor)),
	}

	changed := Reconcile(context.Background(), components, incidents, now)

	assert.False(t, changed)
	assert.Len(t, components, 1, "no synthetic component may be materialized")
	assert.Equal(t, domain.ComponentStatusOperational, components[0].Status)
}
