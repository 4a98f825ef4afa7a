package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keyxmakerx/reverie/internal/plugins/mood"
)

func TestPrintSummary_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	s := mood.Aggregate(map[string]string{})
	if err := printSummary(&buf, mood.Default.Taxonomy(), s); err != nil {
		t.Fatalf("printSummary: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "entries: 0") {
		t.Errorf("missing entry count in %q", out)
	}
	if !strings.Contains(out, "day: none") {
		t.Errorf("expected no best day in %q", out)
	}
}

func TestAnalyzeCmd_ReadsExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journalData.json")
	data := `{"2024-03-01":{"text":"so happy and joyful today","image":null},"2024-03-02":"tired"}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := newAnalyzeCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--file", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(buf.String(), "entries: 2") {
		t.Errorf("expected two entries, got %q", buf.String())
	}
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	cmd := newAnalyzeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "nope.json")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
