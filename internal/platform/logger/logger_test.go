package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"DEBUG":   Debug,
		"warning": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLogger_JSON_MergesBaseAndCallFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "medisync-hub", Out: &buf})

	l.With(map[string]any{"component": "test"}).Info("hello", map[string]any{"n": 1, " ": "dropped"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if entry["message"] != "hello" || entry["app"] != "medisync-hub" || entry["component"] != "test" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry[" "]; ok {
		t.Fatalf("blank key should be dropped: %#v", entry)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatJSON, Out: &buf})

	l.Info("skip", nil)
	l.Debug("skip", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}

	l.Error("boom", nil)
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}
