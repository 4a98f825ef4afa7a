package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "I felt happy today", "I felt happy today"},
		{"less-than kept", "if x<y then I feel glad", "if x<y then I feel glad"},
		{"tag-like kept", "I was <happy> today", "I was <happy> today"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"entities untouched", "a &amp; b", "a &amp; b"},
		{"crlf normalised", "a\r\nb", "a\nb"},
		{"lone cr normalised", "a\rb", "a\nb"},
		{"newlines kept", "line one\nline two", "line one\nline two"},
		{"ends trimmed", "  \n hi \n ", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  buy\n milk  ", "buy milk"},
		{"<urgent>", "<urgent>"},
		{"fix a<b bug", "fix a<b bug"},
		{" \t\n ", ""},
	}
	for _, tt := range tests {
		if got := Line(tt.in); got != tt.want {
			t.Errorf("Line(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<html><body><h1>503 Service Unavailable</h1>\n<p>try later</p></body></html>", "503 Service Unavailable try later"},
		{"Model is loading", "Model is loading"},
		{"<script>alert(1)</script>rate limited", "rate limited"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
