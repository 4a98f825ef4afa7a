package layouts

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, ctx context.Context, h func(*HTML)) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Component(h).Render(ctx, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestHTML_TextEscapes(t *testing.T) {
	out := render(t, context.Background(), func(h *HTML) {
		h.Text(`<script>"x"</script>`)
	})
	if strings.Contains(out, "<script>") {
		t.Errorf("expected escaped output, got %q", out)
	}
}

func TestPage_NavOnlyWhenAuthenticated(t *testing.T) {
	body := Component(func(h *HTML) { h.Raw("<p>hi</p>") })

	var buf bytes.Buffer
	if err := Page("Login", body).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "top-nav") {
		t.Error("anonymous page must not render the nav")
	}

	ctx := SetIsAuthenticated(context.Background(), true)
	ctx = SetActivePath(ctx, "/journal")
	ctx = SetCSRFToken(ctx, "tok")
	buf.Reset()
	if err := Page("Journal", body).Render(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/journal" class="active"`) {
		t.Error("expected journal link to be active")
	}
	if !strings.Contains(out, `name="csrf_token" value="tok"`) {
		t.Error("expected CSRF field in sign-out form")
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Error("expected body to be rendered")
	}
}
