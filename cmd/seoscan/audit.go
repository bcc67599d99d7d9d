package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/analyze"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/log"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/pipeline"
	"github.com/nao1215/seoscan/internal/report"
	"github.com/nao1215/seoscan/internal/scrape"
)

// apiKeyEnvVar is the environment variable consulted when --api-key is
// not given. Matches the variable the inference backend's own tooling
// uses, so existing shells work without extra setup.
const apiKeyEnvVar = "GROQ_API_KEY"

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Audit a single web page for SEO problems",
		Long: `Audit fetches a single web page and analyzes it for SEO problems.

Five independent stages run concurrently against one snapshot of the page:
- Content quality (title, meta description, headings, thin content)
- Image optimization (alt text, formats, EXIF metadata)
- Keyword usage (stuffing, title alignment, coverage gaps)
- Backlink hygiene (anchors, shorteners, nofollow profile)
- URL structure (length, depth, separators, tracking parameters)

With an API key (--api-key or ` + apiKeyEnvVar + `), deterministic checks are
enriched by language-model review of the copy, alt text, and keyword
opportunities. Without one, the audit runs in deterministic-only mode.

Examples:
  # Audit a page with deterministic checks only
  seoscan audit https://example.com/blog/post

  # Audit with language-model enrichment
  seoscan audit --api-key gsk_... https://example.com/blog/post

  # Render JavaScript before analyzing
  seoscan audit --render https://app.example.com/landing

  # Output JSON report to a file
  seoscan audit --json -o report.json https://example.com/

  # Use a custom configuration file
  seoscan audit -c myconfig.yaml https://example.com/

Configuration file (.seoscan) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      keywords:
        - "espresso machines"
      render: true`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().BoolP("render", "r", false,
		"Render the page with a headless browser before analyzing")

	// Pipeline behavior flags
	cmd.Flags().Duration("stage-timeout", config.DefaultStageTimeout,
		"Timeout for one analysis stage including retries")
	cmd.Flags().Duration("pipeline-timeout", config.DefaultPipelineTimeout,
		"Timeout for the whole audit run")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retry budget per stage for transient inference failures")
	cmd.Flags().Int("calls-per-minute", config.DefaultCallsPerMinute,
		"Inference call pacing across all stages")
	cmd.Flags().Int64("quota", config.DefaultQuotaUnits,
		"Shared quota units for concurrently running stages")
	cmd.Flags().IntP("max-actions", "a", config.DefaultMaxPriorityActions,
		"Number of findings in the priority action list")

	// Inference backend flags
	cmd.Flags().StringP("api-key", "k", "",
		"Inference API key (default: "+apiKeyEnvVar+" environment variable)")
	cmd.Flags().String("base-url", config.DefaultInferenceBaseURL,
		"Inference endpoint base URL (OpenAI-compatible)")
	cmd.Flags().String("text-model", config.DefaultTextModel,
		"Model for text analysis prompts")
	cmd.Flags().String("vision-model", config.DefaultVisionModel,
		"Model for image description prompts")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save the audit result to the history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The secure handler masks API keys and
	// cookies if they ever reach a log record.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Target = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.StageTimeout, err = cmd.Flags().GetDuration("stage-timeout")
	if err != nil {
		return nil, err
	}

	cfg.PipelineTimeout, err = cmd.Flags().GetDuration("pipeline-timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.CallsPerMinute, err = cmd.Flags().GetInt("calls-per-minute")
	if err != nil {
		return nil, err
	}

	cfg.QuotaUnits, err = cmd.Flags().GetInt64("quota")
	if err != nil {
		return nil, err
	}

	cfg.MaxPriorityActions, err = cmd.Flags().GetInt("max-actions")
	if err != nil {
		return nil, err
	}

	cfg.Render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnvVar)
	}

	cfg.InferenceBaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.TextModel, err = cmd.Flags().GetString("text-model")
	if err != nil {
		return nil, err
	}

	cfg.VisionModel, err = cmd.Flags().GetString("vision-model")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	// Save to the history database using the XDG data directory unless
	// the user opted out.
	cfg.SaveToDB = !noSave
	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// runAudit executes the audit end to end: acquire the page, run the
// pipeline, aggregate, output, and save.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	site := siteConfigFor(cfg)
	if site.Render {
		cfg.Render = true
	}

	logger.Info("starting audit",
		"target", cfg.Target,
		"render", cfg.Render,
		"enrichment", cfg.APIKey != "",
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	scraper := buildScraper(cfg, site, logger)

	fmt.Printf("Auditing %s...\n", cfg.Target)
	startTime := time.Now()

	// Acquisition is the only operation whose failure aborts the audit:
	// without a snapshot there is nothing for any stage to analyze.
	facts, err := scraper.Acquire(ctx, cfg.Target)
	if err != nil {
		return fmt.Errorf("failed to acquire page: %w", err)
	}

	var client inference.Client
	if cfg.APIKey != "" {
		client = inference.NewChatClient(cfg.InferenceBaseURL, cfg.APIKey,
			inference.WithModels(cfg.TextModel, cfg.VisionModel),
			inference.WithLogger(logger),
		)
	} else {
		logger.Info("no API key, running deterministic-only audit")
	}

	limiter := pipeline.NewRateLimiter(cfg.QuotaUnits, cfg.CallsPerMinute)
	runner := pipeline.NewStageRunner(limiter,
		pipeline.WithRetryPolicy(pipeline.RetryPolicy{
			BaseDelay: cfg.RetryBaseDelay,
			MaxDelay:  cfg.RetryMaxDelay,
		}),
		pipeline.WithRunnerLogger(logger),
	)

	stages := analyze.DefaultStages(cfg, client, limiter, logger, site)
	p, err := pipeline.New(stages, runner, cfg.QuotaUnits, pipeline.WithPipelineLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.PipelineTimeout)
	defer cancel()

	result, err := p.Execute(runCtx, facts)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	maxActions := cfg.MaxPriorityActions
	if site.MaxPriorityActions > 0 {
		maxActions = site.MaxPriorityActions
	}
	auditReport := pipeline.NewAggregator(maxActions).Aggregate(facts.CanonicalURL, time.Now().UTC(), result)

	elapsed := time.Since(startTime)
	fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Generate and output report
	if err := outputReport(cfg, auditReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Save to database if enabled. The pipeline context may already be
	// expired, so saving uses the parent context.
	if err := saveAuditReport(ctx, db, auditReport, logger); err != nil {
		logger.Error("failed to save audit report", "target", cfg.Target, "error", err)
	}

	// The audit succeeds when at least one stage produced usable
	// findings. A report where every stage failed is an error.
	for _, section := range auditReport.Sections {
		if section.Status != model.OutcomeFailed {
			return nil
		}
	}
	return errors.New("all analysis stages failed; see the stage manifest for reasons")
}

// siteConfigFor resolves the per-host settings for the audit target.
func siteConfigFor(cfg *config.Config) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(cfg.Target)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// buildScraper assembles the page acquisition stack from the config and
// per-site settings.
func buildScraper(cfg *config.Config, site config.SiteConfig, logger *slog.Logger) *scrape.Scraper {
	fetchOpts := []scrape.FetcherOption{
		scrape.WithFetchTimeout(cfg.Timeout),
		scrape.WithUserAgent(cfg.UserAgent),
		scrape.WithMaxBodySize(cfg.MaxBodySize),
		scrape.WithFetchLogger(logger),
	}
	if site.Cookie != "" {
		fetchOpts = append(fetchOpts, scrape.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		fetchOpts = append(fetchOpts, scrape.WithHeaders(site.Headers))
	}

	imageDir := cfg.ImageDir
	if imageDir == "" {
		imageDir = filepath.Join(config.XDGCacheDir(), "images")
	}

	opts := []scrape.Option{
		scrape.WithFetcher(scrape.NewFetcher(fetchOpts...)),
		scrape.WithDownloader(scrape.NewDownloader(imageDir,
			scrape.WithDownloadTimeout(cfg.Timeout),
			scrape.WithDownloadUserAgent(cfg.UserAgent),
			scrape.WithDownloadLogger(logger),
		)),
		scrape.WithLogger(logger),
	}
	if cfg.Render {
		opts = append(opts, scrape.WithRenderer(scrape.NewRenderer(
			scrape.WithRenderLogger(logger),
		)))
	}

	return scrape.New(opts...)
}

// outputReport outputs the audit report in the requested format.
func outputReport(cfg *config.Config, auditReport *model.Report) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports of authenticated pages can reveal private content.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report for tool integration)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		_, err := writer.Write(auditReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(auditReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(auditReport)
	return err
}

// saveAuditReport saves the audit report to the database if enabled.
// If db is nil, this function is a no-op.
func saveAuditReport(ctx context.Context, db *database.AuditDB, auditReport *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, auditReport)
	if err != nil {
		return fmt.Errorf("failed to save audit report: %w", err)
	}

	logger.Info("audit report saved to database", "url", auditReport.URL, "id", id)
	return nil
}
