package sketch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/reverie/internal/plugins/journal"
)

const (
	// StalePending is how long an entry may sit in "pending" before the
	// backfill assumes its job was lost (a restart, a full queue).
	StalePending = time.Hour

	// BackfillBatch bounds how many entries one backfill run draws.
	BackfillBatch = 100

	backfillTimeout = 30 * time.Minute
)

// Backfill draws entries whose sketch failed, was never made, or has been
// pending longer than StalePending. At most Options.Workers generations run
// at once. It returns how many entries it attempted.
func (w *Worker) Backfill(ctx context.Context) (int, error) {
	candidates, err := w.entries.ListNeedingSketch(ctx, time.Now().Add(-StalePending), BackfillBatch)
	if err != nil {
		return 0, fmt.Errorf("listing backfill candidates: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)

	attempted := 0
	for _, e := range candidates {
		if len(strings.TrimSpace(e.Text)) <= journal.MinSketchText {
			continue
		}
		attempted++
		j := job{UserID: e.UserID, Date: e.Date}
		g.Go(func() error {
			if err := w.entries.SetSketch(ctx, j.UserID, j.Date, journal.SketchUpdate{Status: journal.SketchPending}); err != nil {
				return fmt.Errorf("marking %s pending: %w", j.key(), err)
			}
			w.process(ctx, j)
			return nil
		})
	}
	return attempted, g.Wait()
}

// ScheduleBackfill registers the backfill on a cron schedule in loc. The
// returned scheduler is not started. An empty spec, or a disabled provider,
// schedules nothing and returns nil.
func (w *Worker) ScheduleBackfill(spec string, loc *time.Location) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	if _, disabled := w.gen.(Disabled); disabled {
		slog.Info("sketch backfill not scheduled; provider disabled")
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, w.runBackfill); err != nil {
		return nil, fmt.Errorf("scheduling sketch backfill %q: %w", spec, err)
	}
	slog.Info("sketch backfill scheduled", slog.String("schedule", spec))
	return c, nil
}

func (w *Worker) runBackfill() {
	ctx, cancel := context.WithTimeout(w.ctx, backfillTimeout)
	defer cancel()

	start := time.Now()
	n, err := w.Backfill(ctx)
	if err != nil {
		slog.Error("sketch backfill failed", slog.Int("attempted", n), slog.Any("error", err))
		return
	}
	slog.Info("sketch backfill finished", slog.Int("attempted", n), slog.Duration("took", time.Since(start)))
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
