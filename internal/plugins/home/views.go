package home

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// HomePage is the dashboard.
func HomePage(d Dashboard) templ.Component {
	return layouts.Page("Home", layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<header class="header-nav"><div><h1 class="title-gradient">Good day, `)
		h.Text(d.Name)
		h.Raw(`</h1><p>What would you like to do today?</p></div>`,
			`<form method="post" action="/logout" class="inline">`)
		h.CSRFField()
		h.Raw(`<button type="submit" class="btn btn-glass">Sign out</button></form></header>`)

		h.Raw(`<section class="card-grid">`)

		h.Raw(`<a class="glass-card feature-card" href="/journal"><h2>Personal Journal</h2>`,
			`<p>Write about your day and get a memory sketch.</p><p class="card-status">`)
		switch {
		case d.StatusUnknown && !d.WroteToday:
			h.Raw(`&nbsp;`)
		case !d.WroteToday:
			h.Raw(`Nothing written today yet`)
		case d.SketchStatus == journal.SketchPending:
			h.Raw(`Today's sketch is being drawn`)
		default:
			h.Raw(`Today's entry is saved`)
		}
		h.Raw(`</p></a>`)

		h.Raw(`<a class="glass-card feature-card" href="/todo"><h2>Task Manager</h2>`,
			`<p>Keep track of what needs doing.</p><p class="card-status">`)
		switch d.PendingTasks {
		case 0:
			h.Raw(`All caught up!`)
		case 1:
			h.Raw(`1 pending task`)
		default:
			h.Raw(strconv.Itoa(d.PendingTasks), ` pending tasks`)
		}
		h.Raw(`</p></a>`)

		h.Raw(`<a class="glass-card feature-card" href="/analytics"><h2>Mood Analytics</h2>`,
			`<p>See how your words have felt over time.</p></a>`)

		h.Raw(`</section>`)
	}))
}
