package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns ldflags version when set", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = "v1.2.3"
		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("expected 'v1.2.3', got %q", got)
		}
	})

	t.Run("returns non-empty version without ldflags", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = ""
		if got := getVersion(); got == "" {
			t.Error("expected non-empty version")
		}
	})
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Run("returns ldflags commit when set", func(t *testing.T) {
		original := commit
		defer func() { commit = original }()

		commit = "abc1234"
		if got := getCommit(); got != "abc1234" {
			t.Errorf("expected 'abc1234', got %q", got)
		}
	})

	t.Run("returns non-empty commit without ldflags", func(t *testing.T) {
		original := commit
		defer func() { commit = original }()

		commit = ""
		if got := getCommit(); got == "" {
			t.Error("expected non-empty commit")
		}
	})
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	t.Run("returns ldflags date when set", func(t *testing.T) {
		original := date
		defer func() { date = original }()

		date = "2026-01-01"
		if got := getDate(); got != "2026-01-01" {
			t.Errorf("expected '2026-01-01', got %q", got)
		}
	})
}

// TestNewVersionCmd tests the version command.
func TestNewVersionCmd(t *testing.T) {
	t.Run("prints version information", func(t *testing.T) {
		cmd := NewVersionCmd()

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "seoscan version") {
			t.Errorf("expected output to contain 'seoscan version', got %q", out)
		}
		if !strings.Contains(out, "commit:") {
			t.Errorf("expected output to contain 'commit:', got %q", out)
		}
		if !strings.Contains(out, "built:") {
			t.Errorf("expected output to contain 'built:', got %q", out)
		}
	})
}
