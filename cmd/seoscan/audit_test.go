package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/model"
)

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "audit [url]" {
			t.Errorf("expected use 'audit [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has render flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("render")
		if flag == nil {
			t.Fatal("expected render flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
	})

	t.Run("has api-key flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("api-key")
		if flag == nil {
			t.Fatal("expected api-key flag")
		}
		if flag.Shorthand != "k" {
			t.Errorf("expected shorthand 'k', got %q", flag.Shorthand)
		}
	})

	t.Run("has pipeline flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"stage-timeout", "pipeline-timeout", "retries", "calls-per-minute", "quota", "max-actions"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-save") == nil {
			t.Error("expected no-save flag")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAuditCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get audit subcommand
		auditCmd, _, err := root.Find([]string{"audit"})
		if err != nil {
			t.Fatalf("failed to find audit command: %v", err)
		}

		result := getVerboseFlag(auditCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.Target != "https://example.com/" {
			t.Errorf("expected target 'https://example.com/', got %q", cfg.Target)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
		if cfg.QuotaUnits != config.DefaultQuotaUnits {
			t.Errorf("expected default quota, got %d", cfg.QuotaUnits)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
		if cfg.SiteConfigs == nil {
			t.Error("expected non-nil SiteConfigs")
		}
	})

	t.Run("builds config with custom timeouts", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("timeout", "10s")
		_ = cmd.Flags().Set("stage-timeout", "20s")
		_ = cmd.Flags().Set("pipeline-timeout", "2m")
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout 10s, got %v", cfg.Timeout)
		}
		if cfg.StageTimeout != 20*time.Second {
			t.Errorf("expected StageTimeout 20s, got %v", cfg.StageTimeout)
		}
		if cfg.PipelineTimeout != 2*time.Minute {
			t.Errorf("expected PipelineTimeout 2m, got %v", cfg.PipelineTimeout)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("no-save disables the database", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("api key falls back to environment", func(t *testing.T) {
		t.Setenv(apiKeyEnvVar, "gsk_from_env")

		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.APIKey != "gsk_from_env" {
			t.Errorf("expected API key from environment, got %q", cfg.APIKey)
		}
	})

	t.Run("api key flag overrides environment", func(t *testing.T) {
		t.Setenv(apiKeyEnvVar, "gsk_from_env")

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("api-key", "gsk_from_flag")
		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.APIKey != "gsk_from_flag" {
			t.Errorf("expected API key from flag, got %q", cfg.APIKey)
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "seoscan.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  render: true
sites:
  example.com:
    cookie: session=xyz
    keywords:
      - espresso
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com/page"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if !cfg.SiteConfigs.Defaults.Render {
			t.Error("expected defaults.render to be true")
		}
		site := siteConfigFor(cfg)
		if site.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", site.Cookie)
		}
		if len(site.Keywords) != 1 || site.Keywords[0] != "espresso" {
			t.Errorf("expected site keywords [espresso], got %v", site.Keywords)
		}
	})

	t.Run("fails with explicit missing config file", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := buildConfig(cmd, []string{"https://example.com/"})
		if err == nil {
			t.Error("expected error for missing explicit config file")
		}
		if err != nil && !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

// TestSiteConfigFor tests per-host config resolution.
func TestSiteConfigFor(t *testing.T) {
	t.Parallel()

	t.Run("nil site configs yield zero value", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Target = "https://example.com/"

		site := siteConfigFor(cfg)
		if site.Cookie != "" || site.Render {
			t.Errorf("expected zero site config, got %+v", site)
		}
	})

	t.Run("matches by hostname", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Target = "https://example.com:8080/blog/post?ref=x"
		cfg.SiteConfigs = &config.File{
			Sites: map[string]config.SiteConfig{
				"example.com": {Render: true, MaxPriorityActions: 5},
			},
		}

		site := siteConfigFor(cfg)
		if !site.Render {
			t.Error("expected render override for matching host")
		}
		if site.MaxPriorityActions != 5 {
			t.Errorf("expected MaxPriorityActions 5, got %d", site.MaxPriorityActions)
		}
	})
}

// TestOutputReport tests report output destination and format selection.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.Report {
		return &model.Report{
			URL:       "https://example.com/",
			AuditedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Sections: []model.Section{
				{Stage: "content", Category: model.CategoryContent, StatusText: "success"},
			},
			Manifest: []model.StageStatus{
				{Stage: "content", Category: model.CategoryContent, Status: "success", Attempts: 1},
			},
		}
	}

	t.Run("writes JSON report to file", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "out", "report.json")

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}

		var decoded struct {
			Report *model.Report `json:"report"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("report file is not valid JSON: %v", err)
		}
		if decoded.Report == nil || decoded.Report.URL != "https://example.com/" {
			t.Errorf("decoded report = %+v, want the written report", decoded.Report)
		}
	})

	t.Run("report file has secure permissions", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.md")

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to stat report file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}
