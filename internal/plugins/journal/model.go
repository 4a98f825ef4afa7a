// Package journal is the day-by-day diary: one entry per user per calendar
// day, an optional memory sketch generated from the text, and the import and
// export of the browser-era journal blob.
package journal

import (
	"fmt"
	"strings"
	"time"
)

// Sketch statuses.
const (
	SketchNone    = "none"
	SketchPending = "pending"
	SketchReady   = "ready"
	SketchFailed  = "failed"
)

// MinSketchText is the trimmed length an entry must exceed before a sketch
// is generated for it.
const MinSketchText = 10

// MaxTextLength caps a single entry.
const MaxTextLength = 50_000

// Entry is one day of the diary.
type Entry struct {
	UserID       string    `json:"-"`
	Date         string    `json:"date"`
	Text         string    `json:"text"`
	SketchID     string    `json:"sketch_id,omitempty"`
	SketchStatus string    `json:"sketch_status"`
	SketchError  string    `json:"sketch_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSketch reports whether a stored sketch is attached.
func (e *Entry) HasSketch() bool { return e.SketchID != "" }

// SketchURL is the media URL of the attached sketch, or "".
func (e *Entry) SketchURL() string {
	if e.SketchID == "" {
		return ""
	}
	return "/media/" + e.SketchID
}

// SketchThumbURL is the thumbnail URL of the attached sketch, or "".
func (e *Entry) SketchThumbURL() string {
	if e.SketchID == "" {
		return ""
	}
	return "/media/" + e.SketchID + "/thumb"
}

// State returns what the editor polls for while a sketch is generated.
func (e *Entry) State() SketchState {
	status := e.SketchStatus
	if status == "" {
		status = SketchNone
	}
	return SketchState{
		Date:     e.Date,
		Status:   status,
		Error:    e.SketchError,
		URL:      e.SketchURL(),
		ThumbURL: e.SketchThumbURL(),
	}
}

// SketchState is the JSON body of GET /journal/:date/sketch.
type SketchState struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	URL      string `json:"url,omitempty"`
	ThumbURL string `json:"thumb_url,omitempty"`
}

// NeedsSketch decides whether saving text over old should start a new
// sketch: the text must be long enough, and either nothing is drawn yet or
// the text changed. An unchanged entry already waiting for its sketch is
// left alone.
func NeedsSketch(old *Entry, text string) bool {
	if len(strings.TrimSpace(text)) <= MinSketchText {
		return false
	}
	if old == nil {
		return true
	}
	if old.Text != text {
		return true
	}
	return !old.HasSketch() && old.SketchStatus != SketchPending
}

// SketchFailureMessage is the text shown beside an entry whose sketch could
// not be made.
func SketchFailureMessage(err error) string {
	return fmt.Sprintf("Could not generate image: %v. Saving text only.", err)
}

// Day describes one page of the diary and its neighbours.
type Day struct {
	Date    string
	Prev    string
	Next    string // empty on today
	IsToday bool
	Label   string
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Sketches int `json:"sketches"`
	Skipped  int `json:"skipped"`
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
