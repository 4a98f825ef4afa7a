package mood

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// maxDetectText caps the body of a detect request.
const maxDetectText = 100_000

// Handler serves the analytics page and the mood API.
type Handler struct {
	service MoodService
}

// NewHandler creates a mood handler.
func NewHandler(service MoodService) *Handler {
	return &Handler{service: service}
}

// Analytics renders the mood distribution page (GET /analytics).
func (h *Handler) Analytics(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, AnalyticsPage(h.service.Taxonomy(), summary))
}

// SummaryAPI returns the summary as JSON (GET /api/v1/mood/summary).
// ?best=<mood> swaps the best day for another mood.
func (h *Handler) SummaryAPI(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.GetUserID(c)

	summary, err := h.service.Summary(ctx, userID)
	if err != nil {
		return err
	}
	if mood := strings.TrimSpace(c.QueryParam("best")); mood != "" {
		best, err := h.service.BestDay(ctx, userID, strings.ToLower(mood))
		if err != nil {
			return err
		}
		summary.BestDay = best
	}
	return c.JSON(http.StatusOK, summary)
}

// DetectRequest is the body of POST /api/v1/mood/detect.
type DetectRequest struct {
	Text string `json:"text" form:"text"`
}

// DetectAPI tags free text with moods (POST /api/v1/mood/detect). Nothing
// is stored.
func (h *Handler) DetectAPI(c echo.Context) error {
	var req DetectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if len(req.Text) > maxDetectText {
		return apperror.NewValidation("text is too long")
	}
	return c.JSON(http.StatusOK, h.service.Detect(req.Text))
}
