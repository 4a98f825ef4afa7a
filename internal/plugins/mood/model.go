// Package mood is the Mood Analyzer: keyword-based mood tagging of diary
// text, aggregation across a user's history, best-day selection, and the
// pie-chart geometry for the analytics page.
//
// Everything except service.go and handler.go is pure. The taxonomy is
// immutable after package init, so an Analyzer is safe for concurrent use.
package mood

import (
	"errors"
	"fmt"
)

// ErrUnknownMood is returned when a caller names a mood that is not in the
// taxonomy. It indicates a programming error, not bad stored data.
var ErrUnknownMood = errors.New("unknown mood")

// Mood names.
const (
	Happy      = "happy"
	Sad        = "sad"
	Calm       = "calm"
	Love       = "love"
	Romantic   = "romantic"
	Angry      = "angry"
	Depression = "depression"
	Pressure   = "pressure"
	Stress     = "stress"
)

// FallbackColor is used for a mood without a colour of its own.
const FallbackColor = "#cbd5e1"

// Category is one mood in the taxonomy.
type Category struct {
	Name     string
	Words    []string
	Color    string
	Distress bool
}

// Taxonomy is an ordered, read-only list of mood categories. Definition
// order is display order and pie segment order.
type Taxonomy struct {
	categories []Category
	index      map[string]int
}

// NewTaxonomy builds a taxonomy from categories in the given order. Names
// must be unique and every category needs at least one trigger word.
func NewTaxonomy(categories ...Category) (*Taxonomy, error) {
	t := &Taxonomy{index: make(map[string]int, len(categories))}
	for _, c := range categories {
		if c.Name == "" || len(c.Words) == 0 {
			return nil, fmt.Errorf("mood %q needs a name and trigger words", c.Name)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate mood %q", c.Name)
		}
		if c.Color == "" {
			c.Color = FallbackColor
		}
		c.Words = append([]string(nil), c.Words...)
		t.index[c.Name] = len(t.categories)
		t.categories = append(t.categories, c)
	}
	return t, nil
}

// DefaultTaxonomy is the built-in mood vocabulary.
var DefaultTaxonomy = mustTaxonomy(
	Category{Name: Happy, Words: []string{"happy", "joy", "glad", "pleased", "cheerful"}, Color: "#60a5fa"},
	Category{Name: Sad, Words: []string{"sad", "unhappy", "sorrow", "cry", "tears"}, Color: "#93c5fd", Distress: true},
	Category{Name: Calm, Words: []string{"calm", "peaceful", "relaxed"}, Color: "#34d399"},
	Category{Name: Love, Words: []string{"love", "loved", "loving", "affection"}, Color: "#f472b6"},
	Category{Name: Romantic, Words: []string{"romantic", "romance", "date", "kiss"}, Color: "#fb7185"},
	Category{Name: Angry, Words: []string{"angry", "anger", "mad", "furious"}, Color: "#fb923c", Distress: true},
	Category{Name: Depression, Words: []string{"depressed", "depression", "hopeless"}, Color: "#a78bfa", Distress: true},
	Category{Name: Pressure, Words: []string{"pressure", "pressured", "burdened"}, Color: "#facc15", Distress: true},
	Category{Name: Stress, Words: []string{"stress", "stressed", "anxious"}, Color: "#fda4af", Distress: true},
)

func mustTaxonomy(categories ...Category) *Taxonomy {
	t, err := NewTaxonomy(categories...)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns mood names in definition order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Words returns a copy of the trigger words for mood.
func (t *Taxonomy) Words(mood string) ([]string, error) {
	c, err := t.category(mood)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.Words...), nil
}

// Color returns the chart colour for mood, or FallbackColor.
func (t *Taxonomy) Color(mood string) string {
	if c, err := t.category(mood); err == nil {
		return c.Color
	}
	return FallbackColor
}

// IsDistress reports whether mood belongs to the distress subset.
func (t *Taxonomy) IsDistress(mood string) bool {
	c, err := t.category(mood)
	return err == nil && c.Distress
}

func (t *Taxonomy) category(mood string) (Category, error) {
	i, ok := t.index[mood]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownMood, mood)
	}
	return t.categories[i], nil
}

// supportivePhrases are shown beside an entry that reads as distressed.
var supportivePhrases = []string{
	"It's okay to have hard days. Be gentle with yourself.",
	"Take a slow, deep breath. You've handled difficult moments before.",
	"Consider reaching out to someone you trust and sharing how you feel.",
	"A short walk, some water, or a little rest can make a real difference.",
}

// SupportivePhrases returns a copy of the fixed supportive phrase list.
func SupportivePhrases() []string {
	return append([]string(nil), supportivePhrases...)
}

// Counts maps every taxonomy mood to its number of trigger-word matches.
// Analyzer always fills every mood, so a missing key means a caller used a
// mood outside the taxonomy.
type Counts map[string]int

// Get returns the count for mood, or ErrUnknownMood.
func (c Counts) Get(mood string) (int, error) {
	n, ok := c[mood]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMood, mood)
	}
	return n, nil
}

// Total is the sum over all moods.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Distribution is the aggregate across many entries.
type Distribution struct {
	Totals      Counts             `json:"totals"`
	Total       int                `json:"total"`
	Percentages map[string]float64 `json:"percentages"`
}

// BestDay is the date scoring highest for one mood. Found is false when
// there were no entries at all.
type BestDay struct {
	Mood  string `json:"mood"`
	Date  string `json:"date,omitempty"`
	Score int    `json:"score"`
	Found bool   `json:"found"`
}

// Segment is one slice of the mood pie. Angles are degrees measured
// clockwise from 12 o'clock.
type Segment struct {
	Mood       string  `json:"mood"`
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

// Summary is everything the analytics page needs.
type Summary struct {
	Distribution
	Entries  int       `json:"entries"`
	BestDay  BestDay   `json:"best_day"`
	Segments []Segment `json:"segments"`
}

// Detection is the per-entry result of DetectMoodLabels.
type Detection struct {
	Labels      []string `json:"labels"`
	Suggestions []string `json:"suggestions"`
}
