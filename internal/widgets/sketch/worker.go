package sketch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
)

// Errors returned by RequestSketch.
var (
	ErrQueueFull = errors.New("sketch queue is full")
	ErrStopped   = errors.New("sketch worker is stopped")
)

// EntryStore is the journal storage the worker reads and updates.
type EntryStore interface {
	Get(ctx context.Context, userID, date string) (*journal.Entry, error)
	SetSketch(ctx context.Context, userID, date string, update journal.SketchUpdate) error
	ListNeedingSketch(ctx context.Context, staleBefore time.Time, limit int) ([]journal.Entry, error)
}

// ImageStore persists generated images.
type ImageStore interface {
	Store(ctx context.Context, input media.StoreInput) (*media.MediaFile, error)
	Delete(ctx context.Context, userID, id string) error
}

// Options tunes a Worker.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type job struct {
	UserID string
	Date   string
}

func (j job) key() string { return j.UserID + "/" + j.Date }

// Worker generates sketches on a fixed pool of goroutines fed by a bounded
// queue. Requests for a day already waiting in the queue are merged; the
// worker always draws the entry's text as it is when the job starts.
type Worker struct {
	gen     Generator
	entries EntryStore
	images  ImageStore
	opts    Options

	queue chan job

	mu      sync.Mutex
	queued  map[string]bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWorker creates a worker. Call Start before requesting sketches.
func NewWorker(gen Generator, entries EntryStore, images ImageStore, opts Options) *Worker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		gen:     gen,
		entries: entries,
		images:  images,
		opts:    opts,
		queue:   make(chan job, opts.QueueSize),
		queued:  make(map[string]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines. They run until Stop.
func (w *Worker) Start() {
	for i := 0; i < w.opts.Workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	slog.Info("sketch worker started",
		slog.Int("workers", w.opts.Workers),
		slog.Int("queue_size", w.opts.QueueSize),
	)
}

// Stop cancels in-flight generation and waits for the goroutines to exit.
// Entries left pending are picked up by the next backfill.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	slog.Info("sketch worker stopped")
}

// RequestSketch queues a sketch for the given day without blocking. The
// text argument is only used to skip entries too short to draw.
func (w *Worker) RequestSketch(userID, date, text string) error {
	if len(strings.TrimSpace(text)) <= journal.MinSketchText {
		return nil
	}
	j := job{UserID: userID, Date: date}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if w.queued[j.key()] {
		return nil
	}
	select {
	case w.queue <- j:
		w.queued[j.key()] = true
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	for j := range w.queue {
		w.mu.Lock()
		delete(w.queued, j.key())
		w.mu.Unlock()

		if w.ctx.Err() != nil {
			continue
		}
		w.process(w.ctx, j)
	}
}

// process draws one entry and attaches the result. If the text changes
// while the image is generated the result is discarded; the save that
// changed it has queued a fresh job.
func (w *Worker) process(ctx context.Context, j job) {
	log := slog.With(slog.String("user_id", j.UserID), slog.String("date", j.Date))

	entry, err := w.entries.Get(ctx, j.UserID, j.Date)
	if err != nil {
		if !apperror.IsNotFound(err) {
			log.Error("sketch: loading entry", slog.Any("error", err))
		}
		return
	}
	text := entry.Text
	if len(strings.TrimSpace(text)) <= journal.MinSketchText {
		return
	}

	start := time.Now()
	genCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	img, err := w.gen.Generate(genCtx, Prompt(text))
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.fail(ctx, j, text, err)
		return
	}

	file, err := w.images.Store(ctx, media.StoreInput{UserID: j.UserID, Data: img.Data, Source: media.SourceSketch})
	if err != nil {
		w.fail(ctx, j, text, errors.New(apperror.SafeMessage(err)))
		return
	}

	latest, err := w.entries.Get(ctx, j.UserID, j.Date)
	if err != nil || latest.Text != text {
		log.Info("sketch discarded; entry changed during generation")
		w.discard(ctx, j.UserID, file.ID)
		return
	}

	if err := w.entries.SetSketch(ctx, j.UserID, j.Date, journal.SketchUpdate{Status: journal.SketchReady, MediaID: file.ID}); err != nil {
		log.Error("sketch: attaching image", slog.Any("error", err))
		w.discard(ctx, j.UserID, file.ID)
		return
	}
	if latest.SketchID != "" && latest.SketchID != file.ID {
		w.discard(ctx, j.UserID, latest.SketchID)
	}

	log.Info("sketch ready",
		slog.String("media_id", file.ID),
		slog.Duration("took", time.Since(start)),
	)
}

// fail records a generation failure, unless the entry moved on meanwhile.
func (w *Worker) fail(ctx context.Context, j job, text string, cause error) {
	log := slog.With(slog.String("user_id", j.UserID), slog.String("date", j.Date))
	log.Warn("sketch generation failed", slog.Any("error", cause))

	latest, err := w.entries.Get(ctx, j.UserID, j.Date)
	if err != nil || latest.Text != text {
		return
	}
	update := journal.SketchUpdate{Status: journal.SketchFailed, Error: journal.SketchFailureMessage(cause)}
	if err := w.entries.SetSketch(ctx, j.UserID, j.Date, update); err != nil {
		log.Error("sketch: recording failure", slog.Any("error", err))
	}
}

func (w *Worker) discard(ctx context.Context, userID, mediaID string) {
	if err := w.images.Delete(ctx, userID, mediaID); err != nil && !apperror.IsNotFound(err) {
		slog.Warn("sketch: removing unused image", slog.String("media_id", mediaID), slog.Any("error", err))
	}
}
