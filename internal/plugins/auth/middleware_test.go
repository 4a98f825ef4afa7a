package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireAuth(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})
	token, user, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	var seen string
	h := RequireAuth(svc)(func(c echo.Context) error {
		seen = GetUserID(c)
		return c.NoContent(http.StatusOK)
	})

	// Anonymous browser request.
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/journal", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %s", rec.Code, rec.Header().Get("Location"))
	}

	// Anonymous API request.
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for API, got %d", rec.Code)
	}

	// Stale cookie is cleared.
	req := httptest.NewRequest(http.MethodGet, "/journal", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Set-Cookie") == "" {
		t.Errorf("expected redirect and cookie clear, got %d", rec.Code)
	}

	// Valid session.
	req = httptest.NewRequest(http.MethodGet, "/journal", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || seen != user.ID {
		t.Errorf("expected pass-through with user %s, got %d %q", user.ID, rec.Code, seen)
	}
}

func TestLoginHandler_SetsCookieAndRedirects(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})
	h := NewHandler(svc, 3600)
	e := echo.New()

	form := url.Values{"email": {"a@b.c"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/home" {
		t.Errorf("expected redirect home, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if rec.Result().Cookies()[0].Name != sessionCookieName || !rec.Result().Cookies()[0].HttpOnly {
		t.Error("expected HttpOnly session cookie")
	}
}

func TestLoginHandler_RerendersOnBadInput(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})
	h := NewHandler(svc, 3600)
	e := echo.New()

	form := url.Values{"email": {"nope"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 form re-render, got %d", rec.Code)
	}
}
