package scrape

import (
	"strings"
	"testing"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and text", func(t *testing.T) {
		t.Parallel()

		md := Snapshot("<html><body><h1>Go Tips</h1><p>Hello world.</p></body></html>", "https://example.com/")
		if md == "" {
			t.Fatal("Snapshot() returned empty markdown")
		}
		if !strings.Contains(md, "Go Tips") || !strings.Contains(md, "Hello world.") {
			t.Errorf("Snapshot() = %q, want heading and paragraph text", md)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if md := Snapshot("   ", "https://example.com/"); md != "" {
			t.Errorf("Snapshot() = %q, want empty", md)
		}
	})

	t.Run("bounded length", func(t *testing.T) {
		t.Parallel()

		huge := "<html><body><p>" + strings.Repeat("lorem ipsum ", 5000) + "</p></body></html>"
		md := Snapshot(huge, "https://example.com/")
		if len(md) > maxSnapshotLen {
			t.Errorf("snapshot length %d exceeds bound %d", len(md), maxSnapshotLen)
		}
	})
}
