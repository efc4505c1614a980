package demo

import (
	"context"
	"time"

	"github.com/statusgarden/sandbox/internal/pkg/ctxlog"
	"github.com/statusgarden/sandbox/internal/pkg/metrics"
	"github.com/statusgarden/sandbox/internal/upstream"
)

// LiveDeleter deletes demo-created entities from the live system.
type LiveDeleter interface {
	DeleteIncident(ctx context.Context, id string) error
	DeleteTemplate(ctx context.Context, id string) error
}

// KindReport summarizes sweep results for one entity kind.
type KindReport struct {
	Deleted   []string `json:"deleted"`
	Remaining []string `json:"remaining"`
	Errors    []string `json:"errors,omitempty"`
}

// Report summarizes a single sweep.
type Report struct {
	Incidents KindReport `json:"incidents"`
	Templates KindReport `json:"templates"`
	// ComponentsTracked counts tracked components. They are reported but
	// never deleted: removing components is destructive to page structure.
	ComponentsTracked int       `json:"components_tracked"`
	SweptAt           time.Time `json:"swept_at"`
}

// Sweeper drains the tracker against the live system. Sweeps are
// idempotent and re-entrant: any id left behind by a failure is simply
// retried on the next invocation.
type Sweeper struct {
	tracker *Tracker
	live    LiveDeleter
}

// NewSweeper creates a sweeper.
func NewSweeper(tracker *Tracker, live LiveDeleter) *Sweeper {
	return &Sweeper{tracker: tracker, live: live}
}

// Sweep deletes every tracked incident and template from the live system.
// HTTP success and "not found" both count as deleted and untrack the id;
// any other failure leaves the id tracked for the next sweep. A failing
// item never aborts the batch.
func (s *Sweeper) Sweep(ctx context.Context) Report {
	logger := ctxlog.FromContext(ctx)
	listing := s.tracker.List(ctx)

	report := Report{
		Incidents:         s.sweepKind(ctx, KindIncident, listing.Incidents, s.live.DeleteIncident),
		Templates:         s.sweepKind(ctx, KindTemplate, listing.Templates, s.live.DeleteTemplate),
		ComponentsTracked: len(listing.Components),
		SweptAt:           time.Now().UTC(),
	}

	s.tracker.StampCleanup(ctx, report.SweptAt)

	logger.Info("cleanup sweep finished",
		"incidents_deleted", len(report.Incidents.Deleted),
		"incidents_remaining", len(report.Incidents.Remaining),
		"templates_deleted", len(report.Templates.Deleted),
		"templates_remaining", len(report.Templates.Remaining),
		"components_tracked", report.ComponentsTracked,
	)

	return report
}

func (s *Sweeper) sweepKind(ctx context.Context, kind Kind, ids []string, del func(context.Context, string) error) KindReport {
	report := KindReport{Deleted: []string{}, Remaining: []string{}}

	for _, id := range ids {
		err := del(ctx, id)
		switch {
		case err == nil:
			s.tracker.Remove(ctx, kind, id)
			report.Deleted = append(report.Deleted, id)
			metrics.RecordSweepResult(string(kind), "deleted")
		case upstream.IsNotFound(err):
			// Already gone upstream; nothing left to clean.
			s.tracker.Remove(ctx, kind, id)
			report.Deleted = append(report.Deleted, id)
			metrics.RecordSweepResult(string(kind), "already_deleted")
		default:
			ctxlog.FromContext(ctx).Warn("sweep delete failed, keeping for retry",
				"kind", kind, "id", id, "error", err)
			report.Remaining = append(report.Remaining, id)
			report.Errors = append(report.Errors, id+": "+err.Error())
			metrics.RecordSweepResult(string(kind), "failed")
		}
	}

	return report
}
