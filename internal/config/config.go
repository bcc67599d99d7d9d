package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to match typical inference-backend rate limits
// and sensible single-page audit behavior.
const (
	// DefaultTimeout is the per-request timeout for fetching the page and
	// its images. 30 seconds covers slow origins without hanging the audit.
	DefaultTimeout = 30 * time.Second

	// DefaultStageTimeout bounds one analysis stage end to end, including
	// quota acquisition, inference calls, and retries. Stages that exceed
	// it are recorded as failed without affecting their siblings.
	DefaultStageTimeout = 60 * time.Second

	// DefaultPipelineTimeout bounds the whole audit run. With five stages
	// pacing their inference calls, five minutes leaves headroom for a
	// full run even against a slow backend.
	DefaultPipelineTimeout = 5 * time.Minute

	// DefaultMaxRetries is how many times a stage retries a transient
	// inference failure before degrading. Three attempts rides out the
	// short 429/5xx bursts free-tier backends produce.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the first retry backoff. Each retry doubles
	// it, so the schedule is 2s, 4s, 8s with jitter on top.
	DefaultRetryBaseDelay = 2 * time.Second

	// DefaultRetryMaxDelay caps the exponential backoff so a long retry
	// chain never sleeps past the stage deadline by itself.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultCallsPerMinute paces inference calls across all stages.
	// Free-tier backends throttle around this rate; going faster just
	// converts calls into 429 responses.
	DefaultCallsPerMinute = 3

	// DefaultQuotaUnits is the shared weighted quota stages draw from
	// while running. Sized so the two heaviest stages can run together
	// while the rest queue.
	DefaultQuotaUnits = 3000

	// DefaultMaxPriorityActions is how many findings the priority action
	// list shows. Three items keeps the list actionable.
	DefaultMaxPriorityActions = 3

	// DefaultUserAgent identifies seoscan in HTTP requests.
	// A descriptive User-Agent lets site operators identify audit traffic.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/nao1215/seoscan)"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for any HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultInferenceBaseURL is the chat-completions endpoint base.
	DefaultInferenceBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTextModel is the model used for text analysis prompts.
	DefaultTextModel = "llama-3.3-70b-versatile"

	// DefaultVisionModel is the model used for image description prompts.
	DefaultVisionModel = "llama-3.2-11b-vision-preview"

	// AppName is the application name used for XDG directory paths.
	AppName = "seoscan"
)

// Config holds all configuration options for seoscan.
// This struct is designed to be populated from CLI flags and the config
// file, then passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScrapeConfig, PipelineConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Target is the page URL to audit. Must be an absolute http(s) URL.
	Target string

	// Timeout is the per-request timeout for page and image fetches.
	Timeout time.Duration

	// StageTimeout bounds one analysis stage including retries.
	StageTimeout time.Duration

	// PipelineTimeout bounds the whole audit run. Stages still in flight
	// at the deadline are recorded as failed; finished outcomes are kept.
	PipelineTimeout time.Duration

	// MaxRetries is the per-stage retry budget for transient failures.
	MaxRetries int

	// RetryBaseDelay is the initial retry backoff, doubled per retry.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the exponential backoff.
	RetryMaxDelay time.Duration

	// CallsPerMinute paces inference calls across all stages.
	CallsPerMinute int

	// QuotaUnits is the shared weighted quota for concurrently running
	// stages. Each stage declares a cost; heavy stages hold more quota.
	QuotaUnits int64

	// MaxPriorityActions is the size of the report's priority action list.
	MaxPriorityActions int

	// Render fetches the page through a headless browser so
	// JavaScript-injected content is visible to the audit.
	Render bool

	// APIKey authenticates against the inference backend. When empty the
	// audit runs in deterministic-only mode: every stage still produces
	// its rule-based findings but skips language-model enrichment.
	APIKey string

	// InferenceBaseURL is the chat-completions endpoint base URL.
	InferenceBaseURL string

	// TextModel and VisionModel select the inference models.
	TextModel   string
	VisionModel string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seoscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite audit history database.
	// When empty, audit results are not persisted.
	// Defaults to the XDG data directory when SaveToDB is set.
	DBDir string

	// SaveToDB indicates whether to save audit results to the database.
	SaveToDB bool

	// ImageDir is where page images are downloaded for inspection.
	// When empty, a per-run directory under the XDG cache dir is used.
	ImageDir string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, rates).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:            DefaultTimeout,
		StageTimeout:       DefaultStageTimeout,
		PipelineTimeout:    DefaultPipelineTimeout,
		MaxRetries:         DefaultMaxRetries,
		RetryBaseDelay:     DefaultRetryBaseDelay,
		RetryMaxDelay:      DefaultRetryMaxDelay,
		CallsPerMinute:     DefaultCallsPerMinute,
		QuotaUnits:         DefaultQuotaUnits,
		MaxPriorityActions: DefaultMaxPriorityActions,
		InferenceBaseURL:   DefaultInferenceBaseURL,
		TextModel:          DefaultTextModel,
		VisionModel:        DefaultVisionModel,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for seoscan.
// On Linux: ~/.local/share/seoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoscan.
// On Linux: ~/.config/seoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seoscan.
// On Linux: ~/.cache/seoscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any auditing begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}

	u, err := url.Parse(c.Target)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidTarget
	}

	if c.Timeout <= 0 || c.StageTimeout <= 0 || c.PipelineTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}

	if c.QuotaUnits <= 0 {
		return ErrInvalidQuota
	}

	if c.CallsPerMinute <= 0 {
		return ErrInvalidCallsPerMinute
	}

	if c.MaxPriorityActions <= 0 {
		return ErrInvalidPriorityActions
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
