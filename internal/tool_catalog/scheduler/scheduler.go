package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// VersionStore is what the sweeper needs from persistence.
type VersionStore interface {
	FailStaleVersions(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

// Worker periodically marks imports that never left "processing" as failed.
// An import runs inside one request, so a version still processing long after
// it started belongs to a run that died.
type Worker struct {
	Log        *zap.Logger
	Store      VersionStore
	Interval   time.Duration
	StaleAfter time.Duration
	Now        func() time.Time
}

func (w *Worker) Run(ctx context.Context) {
	w.runOnce(ctx)

	for {
		timer := time.NewTimer(w.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.Log.Info("Stale import sweeper stopped")
			return
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) int64 {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	cutoff := now().UTC().Add(-w.StaleAfter)
	n, err := w.Store.FailStaleVersions(ctx, cutoff, "import did not finish within "+w.StaleAfter.String())
	if err != nil {
		w.Log.Error("Failed to sweep stale imports", zap.Error(err))
		return 0
	}
	if n > 0 {
		w.Log.Warn("Marked stale imports as failed",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff),
		)
	}
	return n
}
