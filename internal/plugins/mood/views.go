package mood

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// BestDayLabel formats a best day the way the analytics page shows it:
// "Monday, Jan 1 — 2 happy word(s)", just the date when the score is zero,
// or "No data".
func BestDayLabel(b BestDay) string {
	if !b.Found {
		return "No data"
	}
	label := b.Date
	if t, err := time.Parse(time.DateOnly, b.Date); err == nil {
		label = t.Format("Monday, Jan 2")
	}
	if b.Score > 0 {
		label += fmt.Sprintf(" — %d %s word(s)", b.Score, b.Mood)
	}
	return label
}

// PieChart renders the mood pie as inline SVG.
func PieChart(segments []Segment) templ.Component {
	return layouts.Component(func(h *layouts.HTML) {
		size := strconv.Itoa(ChartSize)
		h.Raw(`<svg class="mood-pie" width="`, size, `" height="`, size, `" viewBox="0 0 `, size, ` `, size,
			`" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="Mood distribution"><g>`)
		for _, s := range segments {
			h.Raw(`<path d="`, ArcPath(s, ChartCenter, ChartCenter, ChartRadius), `" fill="`)
			h.Text(s.Color)
			h.Raw(`" stroke="transparent"><title>`)
			h.Text(fmt.Sprintf("%s: %d", s.Mood, s.Count))
			h.Raw(`</title></path>`)
		}
		h.Raw(`<circle cx="`, num(ChartCenter), `" cy="`, num(ChartCenter), `" r="`, num(ChartRadius*0.5),
			`" fill="rgba(0,0,0,0.04)"></circle></g></svg>`)
	})
}

// AnalyticsPage is the full /analytics page.
func AnalyticsPage(t *Taxonomy, s Summary) templ.Component {
	return layouts.Page("Mood Analytics", layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<header class="header-nav"><div><h1 class="title-gradient">Mood Analytics</h1>`,
			`<p>Aggregated from your saved diary entries</p></div>`,
			`<a href="/home" class="btn btn-glass">Back</a></header>`)

		h.Raw(`<section class="glass-card analytics"><div class="chart">`)
		h.Render(PieChart(s.Segments))
		h.Raw(`</div><div class="distribution"><h3>Mood distribution</h3><ul class="mood-list">`)
		for _, name := range t.Names() {
			h.Raw(`<li><span class="swatch" style="background:`)
			h.Text(t.Color(name))
			h.Raw(`"></span><span class="mood-name">`)
			h.Text(strings.ToUpper(name[:1]) + name[1:])
			h.Raw(`</span><span class="mood-count">`, strconv.Itoa(s.Totals[name]))
			if pct, ok := s.Percentages[name]; ok && pct > 0 {
				h.Raw(fmt.Sprintf(` <small>(%.0f%%)</small>`, pct))
			}
			h.Raw(`</span></li>`)
		}
		h.Raw(`</ul><div class="best-day"><strong>Best day for happiness:</strong><div>`)
		h.Text(BestDayLabel(s.BestDay))
		h.Raw(`</div></div></div></section>`)
	}))
}

// MoodBadges renders detected labels, coloured by t, and any supportive
// suggestions next to the journal editor. A nil t means DefaultTaxonomy.
func MoodBadges(t *Taxonomy, d Detection) templ.Component {
	if t == nil {
		t = DefaultTaxonomy
	}
	return layouts.Component(func(h *layouts.HTML) {
		if len(d.Labels) == 0 {
			return
		}
		h.Raw(`<div class="mood-badges" aria-label="Detected moods">`)
		for _, l := range d.Labels {
			h.Raw(`<span class="badge" style="border-color:`)
			h.Text(t.Color(l))
			h.Raw(`">`)
			h.Text(l)
			h.Raw(`</span>`)
		}
		h.Raw(`</div>`)
		if len(d.Suggestions) > 0 {
			h.Raw(`<aside class="suggestions"><h4>A gentle note</h4><ul>`)
			for _, s := range d.Suggestions {
				h.Raw(`<li>`)
				h.Text(s)
				h.Raw(`</li>`)
			}
			h.Raw(`</ul></aside>`)
		}
	})
}
