package journal

import (
	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/plugins/mood"
	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// JournalPage is the diary editor for one day.
func JournalPage(day Day, entry *Entry, taxonomy *mood.Taxonomy, moods mood.Detection, errMsg string) templ.Component {
	return layouts.Page("Journal", layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<header class="header-nav"><div><h1 class="title-gradient">Personal Journal</h1><p>`)
		h.Text(day.Label)
		h.Raw(`</p></div><nav class="day-nav"><a class="btn btn-glass" href="/journal?date=`)
		h.Text(day.Prev)
		h.Raw(`" aria-label="Previous day">&larr;</a>`)
		if day.Next != "" {
			h.Raw(`<a class="btn btn-glass" href="/journal?date=`)
			h.Text(day.Next)
			h.Raw(`" aria-label="Next day">&rarr;</a>`)
		} else {
			h.Raw(`<span class="btn btn-glass disabled" aria-disabled="true">&rarr;</span>`)
		}
		h.Raw(`</nav></header>`)

		if errMsg != "" {
			h.Raw(`<div class="flash flash-error" role="alert">`)
			h.Text(errMsg)
			h.Raw(`</div>`)
		}

		h.Raw(`<section class="glass-card journal"><form method="post" action="/journal" id="journal-form" class="stack">`)
		h.CSRFField()
		h.Raw(`<input type="hidden" name="date" value="`)
		h.Text(day.Date)
		h.Raw(`"><textarea name="text" id="entry-text" rows="12" placeholder="How was your day?">`)
		h.Text(entry.Text)
		h.Raw(`</textarea><div class="editor-actions">`,
			`<button type="button" id="dictate-btn" class="btn btn-glass" hidden data-ws="/dictation/ws">Dictate</button>`,
			`<span id="dictate-status" class="muted" aria-live="polite"></span>`,
			`<button type="submit" id="save-btn" class="btn btn-primary"`)
		if entry.Text == "" {
			h.Raw(` disabled`)
		}
		h.Raw(`>Save</button></div></form>`)

		h.Render(mood.MoodBadges(taxonomy, moods))
		h.Render(SketchPanel(entry.State()))
		h.Raw(`</section>`)
	}))
}

// SketchPanel shows the memory sketch, or its progress. app.js polls
// data-poll while the status is pending.
func SketchPanel(s SketchState) templ.Component {
	return layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<div id="sketch-panel" class="sketch-panel" data-status="`)
		h.Text(s.Status)
		h.Raw(`" data-poll="/journal/`)
		h.Text(s.Date)
		h.Raw(`/sketch">`)

		if s.URL != "" {
			h.Raw(`<a href="`)
			h.Text(s.URL)
			h.Raw(`" target="_blank"><img class="sketch" alt="Memory sketch" src="`)
			h.Text(s.ThumbURL)
			h.Raw(`"></a>`)
		}
		switch s.Status {
		case SketchPending:
			h.Raw(`<p class="muted">Drawing your memory&hellip;</p>`)
		case SketchFailed:
			h.Raw(`<p class="sketch-error">`)
			h.Text(s.Error)
			h.Raw(`</p>`)
		}
		h.Raw(`</div>`)
	})
}
