package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup for a templ component. The first write error is kept
// and every later call becomes a no-op, so view code can stay linear.
type HTML struct {
	ctx context.Context
	w   io.Writer
	err error
}

// Component adapts a view function into a templ.Component.
func Component(fn func(h *HTML)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &HTML{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Context returns the render context (layout data lives here).
func (h *HTML) Context() context.Context { return h.ctx }

// Raw writes trusted markup as-is.
func (h *HTML) Raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// Text writes s HTML-escaped. Use it for every user-supplied value, in
// element bodies and attribute values alike.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Render writes a nested component.
func (h *HTML) Render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// CSRFField writes the hidden input every POST form needs.
func (h *HTML) CSRFField() {
	h.Raw(`<input type="hidden" name="csrf_token" value="`)
	h.Text(GetCSRFToken(h.ctx))
	h.Raw(`">`)
}
