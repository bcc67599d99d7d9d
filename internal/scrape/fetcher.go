package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FetchResult is the raw outcome of one HTTP fetch.
type FetchResult struct {
	// FinalURL is the URL after following redirects.
	FinalURL string

	// StatusCode is the final HTTP status.
	StatusCode int

	// Body is the response body, truncated at the configured limit.
	Body []byte
}

// Fetcher retrieves pages over plain HTTP.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-request timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize limits how many body bytes are read.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHeaders adds site-specific request headers.
func WithHeaders(h map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = h
	}
}

// WithCookie sets a Cookie header for the audited site.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with sensible defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		userAgent:   "seoscan/1.0",
		maxBodySize: 5 * 1024 * 1024,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page at pageURL.
//
// Non-success HTTP statuses are not uniformly errors: a 500 error page
// still has analyzable markup and the status itself becomes a finding.
// Only explicit refusals (401, 403, 429) map to ErrBlocked, since their
// bodies are interstitials rather than the page under audit.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		var uerr interface{ Timeout() bool }
		if errors.As(err, &uerr) && uerr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrBlocked, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("page fetched",
		"url", finalURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))

	return &FetchResult{
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
