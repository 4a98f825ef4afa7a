package layouts

import (
	"strings"

	"github.com/a-h/templ"
)

type navLink struct {
	href, label string
}

var navLinks = []navLink{
	{"/home", "Home"},
	{"/journal", "Journal"},
	{"/todo", "Tasks"},
	{"/analytics", "Analytics"},
}

// Page wraps body in the application shell: document head, the top nav for
// signed-in users, and the flash banner.
func Page(title string, body templ.Component) templ.Component {
	return Component(func(h *HTML) {
		ctx := h.Context()

		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<meta name="csrf-token" content="`)
		h.Text(GetCSRFToken(ctx))
		h.Raw(`"><title>`)
		h.Text(title)
		h.Raw(` · Reverie</title>`,
			`<link rel="stylesheet" href="/static/css/app.css">`,
			`<script src="/static/js/app.js" defer></script>`,
			`</head><body>`)

		if IsAuthenticated(ctx) {
			active := GetActivePath(ctx)
			h.Raw(`<nav class="top-nav"><a class="brand" href="/home">Reverie</a><ul>`)
			for _, l := range navLinks {
				h.Raw(`<li><a href="`, l.href, `"`)
				if strings.HasPrefix(active, l.href) {
					h.Raw(` class="active" aria-current="page"`)
				}
				h.Raw(`>`, l.label, `</a></li>`)
			}
			h.Raw(`</ul><form method="post" action="/logout" class="inline">`)
			h.CSRFField()
			h.Raw(`<button type="submit" class="btn btn-glass">Sign out</button></form></nav>`)
		}

		if msg := GetFlashError(ctx); msg != "" {
			h.Raw(`<div class="flash flash-error" role="alert">`)
			h.Text(msg)
			h.Raw(`</div>`)
		}

		h.Raw(`<main class="page-container">`)
		h.Render(body)
		h.Raw(`</main></body></html>`)
	})
}
