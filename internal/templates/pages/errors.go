// Package pages holds the standalone pages that do not belong to a plugin.
package pages

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// ErrorPage renders a full page for a failed browser request.
func ErrorPage(code int, message string) templ.Component {
	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}
	return layouts.Page(title, layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<section class="glass-card error-card"><h1 class="title-gradient">`, strconv.Itoa(code), `</h1><p>`)
		h.Text(message)
		h.Raw(`</p><a class="btn btn-primary" href="/home">Back to home</a></section>`)
	}))
}
