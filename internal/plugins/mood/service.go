package mood

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// EntrySource supplies a user's diary text keyed by YYYY-MM-DD. The journal
// service implements it; the analyzer only ever reads a snapshot.
type EntrySource interface {
	TextsByDate(ctx context.Context, userID string) (map[string]string, error)
}

// MoodService is the read-side of the analytics page and API.
type MoodService interface {
	Summary(ctx context.Context, userID string) (Summary, error)
	BestDay(ctx context.Context, userID, mood string) (BestDay, error)
	Detect(text string) Detection
	Taxonomy() *Taxonomy
}

type moodService struct {
	entries  EntrySource
	analyzer *Analyzer
}

// NewMoodService creates a mood service over entries using analyzer. A nil
// analyzer means Default.
func NewMoodService(entries EntrySource, analyzer *Analyzer) MoodService {
	if analyzer == nil {
		analyzer = Default
	}
	return &moodService{entries: entries, analyzer: analyzer}
}

// Summary aggregates every entry the user has written.
func (s *moodService) Summary(ctx context.Context, userID string) (Summary, error) {
	texts, err := s.entries.TextsByDate(ctx, userID)
	if err != nil {
		return Summary{}, apperror.NewInternal(fmt.Errorf("loading entries for mood summary: %w", err))
	}
	summary := s.analyzer.Aggregate(texts)
	slog.Debug("mood summary computed",
		slog.String("user_id", userID),
		slog.Int("entries", summary.Entries),
		slog.Int("matches", summary.Total),
	)
	return summary, nil
}

// BestDay returns the best day for any mood in the taxonomy.
func (s *moodService) BestDay(ctx context.Context, userID, mood string) (BestDay, error) {
	if _, err := s.analyzer.taxonomy.Words(mood); err != nil {
		return BestDay{}, apperror.NewBadRequest(fmt.Sprintf("unknown mood %q", mood))
	}
	texts, err := s.entries.TextsByDate(ctx, userID)
	if err != nil {
		return BestDay{}, apperror.NewInternal(fmt.Errorf("loading entries for best day: %w", err))
	}
	best, err := s.analyzer.BestDayBy(texts, mood)
	if errors.Is(err, ErrUnknownMood) {
		return BestDay{}, apperror.NewBadRequest(fmt.Sprintf("unknown mood %q", mood))
	}
	return best, err
}

func (s *moodService) Detect(text string) Detection { return s.analyzer.DetectMoodLabels(text) }

func (s *moodService) Taxonomy() *Taxonomy { return s.analyzer.taxonomy }
