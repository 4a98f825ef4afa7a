// Package sanitize normalises text. Diary entries and tasks are stored
// exactly as typed apart from line endings and surrounding whitespace;
// templ escapes them when they are rendered. Markup is only stripped from
// text that arrives as HTML, such as error pages from the image APIs.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func strictPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text normalises line breaks to \n and trims the ends. Nothing else
// changes: "if x<y" stays "if x<y".
func Text(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return strings.TrimSpace(input)
}

// Line is Text for single-line fields such as task titles: runs of
// whitespace, newlines included, collapse to one space.
func Line(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// StripHTML turns an HTML fragment into readable plain text. bluemonday
// entity-encodes what it keeps, so the result is unescaped again.
func StripHTML(input string) string {
	return Line(html.UnescapeString(strictPolicy().Sanitize(input)))
}
