package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
	"github.com/keyxmakerx/reverie/internal/plugins/mood"
	"github.com/keyxmakerx/reverie/internal/sanitize"
)

// SketchRequester queues sketch generation for an entry. The sketch worker
// implements it.
type SketchRequester interface {
	RequestSketch(userID, date, text string) error
}

// MediaImporter stores sketches carried inside an imported journal blob.
type MediaImporter interface {
	ImportDataURL(ctx context.Context, userID, dataURL string) (*media.MediaFile, error)
}

// JournalService is the diary's business logic.
type JournalService interface {
	Today() string
	Day(date string) (Day, error)
	Get(ctx context.Context, userID, date string) (*Entry, error)
	Save(ctx context.Context, userID, date, text string) (*Entry, error)
	Moods(ctx context.Context, userID, date string) (mood.Detection, error)
	Taxonomy() *mood.Taxonomy
	TextsByDate(ctx context.Context, userID string) (map[string]string, error)
	Export(ctx context.Context, userID string) (map[string]mood.StoredEntry, error)
	Import(ctx context.Context, userID string, raw []byte) (ImportResult, error)
}

type journalService struct {
	repo     EntryRepository
	media    MediaImporter
	sketches SketchRequester
	analyzer *mood.Analyzer
	loc      *time.Location
	now      func() time.Time
}

// NewJournalService creates the diary service. sketches may be nil, in
// which case saving never starts a sketch. loc decides what "today" is.
func NewJournalService(repo EntryRepository, mediaSvc MediaImporter, sketches SketchRequester, loc *time.Location) JournalService {
	if loc == nil {
		loc = time.UTC
	}
	return &journalService{
		repo:     repo,
		media:    mediaSvc,
		sketches: sketches,
		analyzer: mood.Default,
		loc:      loc,
		now:      time.Now,
	}
}

// Today is the current date key in the configured timezone.
func (s *journalService) Today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

// Day validates a date key and computes its neighbours. An empty key means
// today; future dates are rejected.
func (s *journalService) Day(date string) (Day, error) {
	today := s.Today()
	if date == "" {
		date = today
	}
	t, ok := ParseDate(date)
	if !ok {
		return Day{}, apperror.NewValidation("date must be YYYY-MM-DD")
	}
	if date > today {
		return Day{}, apperror.NewValidation("cannot open a future date")
	}

	d := Day{
		Date:    date,
		Prev:    t.AddDate(0, 0, -1).Format(time.DateOnly),
		IsToday: date == today,
		Label:   t.Format("Monday, January 2, 2006"),
	}
	if !d.IsToday {
		d.Next = t.AddDate(0, 0, 1).Format(time.DateOnly)
	}
	return d, nil
}

// Get returns the entry for a day. A day with nothing written is an empty
// entry, not an error.
func (s *journalService) Get(ctx context.Context, userID, date string) (*Entry, error) {
	if _, err := s.Day(date); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		if apperror.IsNotFound(err) {
			return &Entry{UserID: userID, Date: date, SketchStatus: SketchNone}, nil
		}
		return nil, apperror.NewInternal(err)
	}
	return e, nil
}

// Save stores the text first and then, when the text warrants it, marks the
// entry pending and queues a sketch. Sketch trouble is recorded on the entry
// and never undoes the save.
func (s *journalService) Save(ctx context.Context, userID, date, text string) (*Entry, error) {
	if _, err := s.Day(date); err != nil {
		return nil, err
	}
	text = sanitize.Text(text)
	if text == "" {
		return nil, apperror.NewValidation("entry text is empty")
	}
	if len(text) > MaxTextLength {
		return nil, apperror.NewValidation(fmt.Sprintf("entry is too long; maximum is %d characters", MaxTextLength))
	}

	old, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, apperror.NewInternal(err)
		}
		old = nil
	}

	entry := &Entry{UserID: userID, Date: date, Text: text, SketchStatus: SketchNone}
	if old != nil {
		entry.SketchID = old.SketchID
		entry.SketchStatus = old.SketchStatus
		entry.SketchError = old.SketchError
		entry.CreatedAt = old.CreatedAt
	}
	if err := s.repo.Put(ctx, entry); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("saving journal entry: %w", err))
	}

	slog.Info("journal entry saved",
		slog.String("user_id", userID),
		slog.String("date", date),
		slog.Int("length", len(text)),
	)

	if s.sketches != nil && NeedsSketch(old, text) {
		s.startSketch(ctx, entry)
	}
	return entry, nil
}

func (s *journalService) startSketch(ctx context.Context, entry *Entry) {
	if err := s.repo.SetSketch(ctx, entry.UserID, entry.Date, SketchUpdate{Status: SketchPending}); err != nil {
		slog.Warn("marking sketch pending failed",
			slog.String("user_id", entry.UserID),
			slog.String("date", entry.Date),
			slog.Any("error", err),
		)
		return
	}
	entry.SketchStatus = SketchPending
	entry.SketchError = ""

	if err := s.sketches.RequestSketch(entry.UserID, entry.Date, entry.Text); err != nil {
		msg := SketchFailureMessage(err)
		slog.Warn("sketch request rejected",
			slog.String("user_id", entry.UserID),
			slog.String("date", entry.Date),
			slog.Any("error", err),
		)
		if err := s.repo.SetSketch(ctx, entry.UserID, entry.Date, SketchUpdate{Status: SketchFailed, Error: msg}); err != nil {
			slog.Warn("marking sketch failed failed", slog.Any("error", err))
			return
		}
		entry.SketchStatus = SketchFailed
		entry.SketchError = msg
	}
}

// Moods detects mood labels and supportive suggestions for a day's entry.
// Nothing is persisted.
func (s *journalService) Moods(ctx context.Context, userID, date string) (mood.Detection, error) {
	e, err := s.Get(ctx, userID, date)
	if err != nil {
		return mood.Detection{}, err
	}
	return s.analyzer.DetectMoodLabels(e.Text), nil
}

// Taxonomy is the mood set Moods detects against.
func (s *journalService) Taxonomy() *mood.Taxonomy { return s.analyzer.Taxonomy() }

// TextsByDate feeds the mood analytics.
func (s *journalService) TextsByDate(ctx context.Context, userID string) (map[string]string, error) {
	all, err := s.repo.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	texts := make(map[string]string, len(all))
	for date, e := range all {
		texts[date] = e.Text
	}
	return texts, nil
}

// Export returns the user's journal in the key-value shape the browser
// client stored. Sketches are referenced by their media URL.
func (s *journalService) Export(ctx context.Context, userID string) (map[string]mood.StoredEntry, error) {
	all, err := s.repo.All(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	out := make(map[string]mood.StoredEntry, len(all))
	for date, e := range all {
		out[date] = mood.StoredEntry{Text: e.Text, Sketch: e.SketchURL()}
	}
	return out, nil
}

// Import loads a browser journal blob. A blob that is not a JSON object
// imports nothing. Keys that are not past or present dates, and values
// with neither text nor sketch, are skipped. Existing days are overwritten.
func (s *journalService) Import(ctx context.Context, userID string, raw []byte) (ImportResult, error) {
	stored, err := mood.DecodeStore(raw)
	if err != nil {
		return ImportResult{}, apperror.NewValidation("journal data must be a JSON object keyed by date")
	}

	dates := make([]string, 0, len(stored))
	for date := range stored {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var res ImportResult
	for _, date := range dates {
		v := stored[date]
		text := sanitize.Text(v.Text)
		if _, err := s.Day(date); err != nil || (text == "" && v.Sketch == "") || len(text) > MaxTextLength {
			res.Skipped++
			continue
		}

		if err := s.repo.Put(ctx, &Entry{UserID: userID, Date: date, Text: text}); err != nil {
			return res, apperror.NewInternal(fmt.Errorf("importing %s: %w", date, err))
		}
		res.Imported++

		if v.Sketch == "" || s.media == nil {
			continue
		}
		file, err := s.media.ImportDataURL(ctx, userID, v.Sketch)
		if err != nil {
			slog.Warn("skipping imported sketch",
				slog.String("user_id", userID),
				slog.String("date", date),
				slog.Any("error", err),
			)
			continue
		}
		if err := s.repo.SetSketch(ctx, userID, date, SketchUpdate{Status: SketchReady, MediaID: file.ID}); err != nil {
			return res, apperror.NewInternal(fmt.Errorf("attaching imported sketch: %w", err))
		}
		res.Sketches++
	}

	slog.Info("journal imported",
		slog.String("user_id", userID),
		slog.Int("imported", res.Imported),
		slog.Int("sketches", res.Sketches),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}
