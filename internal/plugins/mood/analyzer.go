package mood

import (
	"regexp"
	"slices"
	"strings"
)

// Analyzer counts moods in text against a taxonomy. Each mood compiles to
// a single whole-word alternation, so "sadly" never counts as "sad".
type Analyzer struct {
	taxonomy *Taxonomy
	patterns []*regexp.Regexp
}

// NewAnalyzer compiles the trigger words of t.
func NewAnalyzer(t *Taxonomy) *Analyzer {
	a := &Analyzer{taxonomy: t, patterns: make([]*regexp.Regexp, len(t.categories))}
	for i, c := range t.categories {
		quoted := make([]string, len(c.Words))
		for j, w := range c.Words {
			quoted[j] = regexp.QuoteMeta(strings.ToLower(w))
		}
		a.patterns[i] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return a
}

// Default analyzes against DefaultTaxonomy.
var Default = NewAnalyzer(DefaultTaxonomy)

// Taxonomy returns the taxonomy the analyzer was built from.
func (a *Analyzer) Taxonomy() *Taxonomy { return a.taxonomy }

// CountMoods returns the number of trigger-word matches per mood. Every
// mood is present in the result; empty text gives all zeros.
func (a *Analyzer) CountMoods(text string) Counts {
	counts := make(Counts, len(a.patterns))
	lower := strings.ToLower(text)
	for i, c := range a.taxonomy.categories {
		if lower == "" {
			counts[c.Name] = 0
			continue
		}
		counts[c.Name] = len(a.patterns[i].FindAllStringIndex(lower, -1))
	}
	return counts
}

// DetectMoodLabels returns the moods present in text in taxonomy order and,
// when any of them is a distress mood, the supportive phrases. Both slices
// are non-nil.
func (a *Analyzer) DetectMoodLabels(text string) Detection {
	counts := a.CountMoods(text)
	d := Detection{Labels: []string{}, Suggestions: []string{}}
	distressed := false
	for _, c := range a.taxonomy.categories {
		if counts[c.Name] > 0 {
			d.Labels = append(d.Labels, c.Name)
			distressed = distressed || c.Distress
		}
	}
	if distressed {
		d.Suggestions = SupportivePhrases()
	}
	return d
}

// Aggregate summarises entries keyed by date: mood totals, the best day for
// happiness and the pie segments.
func (a *Analyzer) Aggregate(entries map[string]string) Summary {
	totals := a.zero()
	perDay := make(map[string]Counts, len(entries))
	for date, text := range entries {
		c := a.CountMoods(text)
		perDay[date] = c
		for mood, n := range c {
			totals[mood] += n
		}
	}

	best, _ := bestDay(perDay, Happy)
	return Summary{
		Distribution: a.distribution(totals),
		Entries:      len(entries),
		BestDay:      best,
		Segments:     a.Segments(totals),
	}
}

// BestDayBy returns the date whose text scores highest for mood. Ties go
// to the earliest date. With no entries the result has Found == false.
func (a *Analyzer) BestDayBy(entries map[string]string, mood string) (BestDay, error) {
	if _, err := a.taxonomy.category(mood); err != nil {
		return BestDay{}, err
	}
	perDay := make(map[string]Counts, len(entries))
	for date, text := range entries {
		perDay[date] = a.CountMoods(text)
	}
	return bestDay(perDay, mood)
}

// bestDay walks dates in ascending order and keeps the first strictly
// greater score. The starting score is -1, so a lone entry with no matches
// is still reported (Found with Score 0).
func bestDay(perDay map[string]Counts, mood string) (BestDay, error) {
	best := BestDay{Mood: mood}
	score := -1
	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	for _, d := range dates {
		n, err := perDay[d].Get(mood)
		if err != nil {
			return BestDay{}, err
		}
		if n > score {
			score = n
			best = BestDay{Mood: mood, Date: d, Score: n, Found: true}
		}
	}
	return best, nil
}

// Segments lays out the non-zero moods of totals as contiguous pie slices
// in taxonomy order, starting at 0 degrees. The last slice ends at exactly
// 360 so float drift never leaves a gap.
func (a *Analyzer) Segments(totals Counts) []Segment {
	total := totals.Total()
	segments := []Segment{}
	if total <= 0 {
		return segments
	}

	angle := 0.0
	for _, c := range a.taxonomy.categories {
		n := totals[c.Name]
		if n <= 0 {
			continue
		}
		share := float64(n) / float64(total)
		segments = append(segments, Segment{
			Mood:       c.Name,
			Color:      c.Color,
			Count:      n,
			Share:      share,
			StartAngle: angle,
			EndAngle:   angle + share*360,
		})
		angle += share * 360
	}
	segments[len(segments)-1].EndAngle = 360
	return segments
}

func (a *Analyzer) distribution(totals Counts) Distribution {
	d := Distribution{Totals: totals, Total: totals.Total(), Percentages: map[string]float64{}}
	if d.Total == 0 {
		return d
	}
	for _, name := range a.taxonomy.Names() {
		d.Percentages[name] = float64(totals[name]) / float64(d.Total) * 100
	}
	return d
}

func (a *Analyzer) zero() Counts {
	c := make(Counts, len(a.taxonomy.categories))
	for _, cat := range a.taxonomy.categories {
		c[cat.Name] = 0
	}
	return c
}

// CountMoods counts moods with the default analyzer.
func CountMoods(text string) Counts { return Default.CountMoods(text) }

// DetectMoodLabels detects moods with the default analyzer.
func DetectMoodLabels(text string) Detection { return Default.DetectMoodLabels(text) }

// Aggregate summarises entries with the default analyzer.
func Aggregate(entries map[string]string) Summary { return Default.Aggregate(entries) }

// BestDayBy finds the best day for mood with the default analyzer.
func BestDayBy(entries map[string]string, mood string) (BestDay, error) {
	return Default.BestDayBy(entries, mood)
}
