package journal

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/plugins/auth"
	"github.com/keyxmakerx/reverie/internal/plugins/mood"
)

// maxImportSize bounds an imported journal blob. Sketches travel inline as
// data URLs, so it is generous.
const maxImportSize = 64 << 20

// Handler serves the diary pages and API.
type Handler struct {
	service JournalService
}

// NewHandler creates a journal handler.
func NewHandler(service JournalService) *Handler {
	return &Handler{service: service}
}

// SaveRequest is the body of POST /journal.
type SaveRequest struct {
	Date string `json:"date" form:"date"`
	Text string `json:"text" form:"text"`
}

// Show renders the editor (GET /journal?date=). An invalid or future date
// falls back to today.
func (h *Handler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	day, err := h.service.Day(c.QueryParam("date"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/journal")
	}
	entry, err := h.service.Get(ctx, auth.GetUserID(c), day.Date)
	if err != nil {
		return err
	}
	moods, err := h.service.Moods(ctx, auth.GetUserID(c), day.Date)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, JournalPage(day, entry, h.service.Taxonomy(), moods, ""))
}

// Save stores the entry (POST /journal). Browsers are redirected back to
// the day; fetch callers get the entry as JSON.
func (h *Handler) Save(c echo.Context) error {
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	userID := auth.GetUserID(c)

	entry, err := h.service.Save(c.Request().Context(), userID, req.Date, req.Text)
	if err != nil {
		status := apperror.SafeCode(err)
		if middleware.WantsJSON(c) || status >= http.StatusInternalServerError {
			return err
		}
		day, dayErr := h.service.Day(req.Date)
		if dayErr != nil {
			return err
		}
		draft := &Entry{Date: day.Date, Text: req.Text, SketchStatus: SketchNone}
		return middleware.Render(c, status, JournalPage(day, draft, h.service.Taxonomy(), mood.Detection{}, apperror.SafeMessage(err)))
	}

	if middleware.WantsJSON(c) {
		return c.JSON(http.StatusOK, entry)
	}
	return c.Redirect(http.StatusSeeOther, "/journal?date="+entry.Date)
}

// SketchStatus reports sketch progress for polling (GET /journal/:date/sketch).
func (h *Handler) SketchStatus(c echo.Context) error {
	entry, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry.State())
}

// GetEntryAPI returns one day as JSON (GET /api/v1/journal/:date).
func (h *Handler) GetEntryAPI(c echo.Context) error {
	entry, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// ExportAPI downloads the whole journal (GET /api/v1/journal).
func (h *Handler) ExportAPI(c echo.Context) error {
	entries, err := h.service.Export(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	blob, err := mood.EncodeStore(entries)
	if err != nil {
		return apperror.NewInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="journalData.json"`)
	return c.JSONBlob(http.StatusOK, blob)
}

// ImportAPI loads a browser journal blob (POST /api/v1/journal/import).
func (h *Handler) ImportAPI(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize+1))
	if err != nil {
		return apperror.NewBadRequest("could not read request body")
	}
	if len(raw) > maxImportSize {
		return apperror.NewValidation("journal data is too large")
	}
	res, err := h.service.Import(c.Request().Context(), auth.GetUserID(c), raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
