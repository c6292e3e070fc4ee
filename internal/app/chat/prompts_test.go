package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSnippetKeepsShortStrings(t *testing.T) {
	if got := snippet("short", 400); got != "short" {
		t.Fatalf("expected the string unchanged, got %q", got)
	}
}

func TestSnippetTruncatesOnRuneBoundary(t *testing.T) {
	// A leading ASCII byte pushes the two-byte runes off even offsets, so
	// the cut point lands mid-rune.
	s := "a" + strings.Repeat("é", 400)

	got := snippet(s, 400)

	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected a truncation marker, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a rune")
	}
	if len(got) > 400+len("…") {
		t.Fatalf("expected at most %d bytes plus the marker, got %d", 400, len(got))
	}
}
