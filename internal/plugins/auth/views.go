package auth

import (
	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// LoginPage is the sign-in form. email refills the field after an error.
func LoginPage(csrfToken, email, errMsg string) templ.Component {
	return layouts.Page("Sign in", layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<section class="glass-card login-card"><h1 class="title-gradient">Welcome back</h1>`,
			`<p>Sign in to your journal, tasks and moods.</p>`)
		if errMsg != "" {
			h.Raw(`<div class="flash flash-error" role="alert">`)
			h.Text(errMsg)
			h.Raw(`</div>`)
		}
		h.Raw(`<form method="post" action="/login" class="stack">`,
			`<input type="hidden" name="csrf_token" value="`)
		h.Text(csrfToken)
		h.Raw(`"><label>Email<input type="email" name="email" required autocomplete="email" value="`)
		h.Text(email)
		h.Raw(`"></label><label>Password<input type="password" name="password" required autocomplete="current-password"></label>`,
			`<button type="submit" class="btn btn-primary">Sign in</button></form></section>`)
	}))
}
