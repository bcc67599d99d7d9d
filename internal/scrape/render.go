package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// defaultSettleDelay is how long the renderer waits after load for
// late-running scripts to finish mutating the DOM.
const defaultSettleDelay = 5 * time.Second

// Renderer fetches pages through a headless browser so JavaScript-built
// content is visible to the audit.
//
// Design decision: a fresh browser per render rather than a pooled one.
// An audit renders exactly one page, so pooling would only add lifecycle
// bugs; the launcher reuses the downloaded browser binary between runs.
type Renderer struct {
	settleDelay time.Duration
	logger      *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithSettleDelay overrides the post-load settle wait.
func WithSettleDelay(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d >= 0 {
			r.settleDelay = d
		}
	}
}

// WithRenderLogger sets the logger.
func WithRenderLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		settleDelay: defaultSettleDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to pageURL in a stealth page, waits for the page to
// load and settle, and returns the final serialized HTML.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("%w: launch browser: %v", ErrUnreachable, err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("%w: connect browser: %v", ErrUnreachable, err)
	}
	defer func() {
		_ = browser.Close()
	}()

	// A stealth page masks the usual headless fingerprints so the render
	// sees the same markup a regular visitor would.
	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("%w: open page: %v", ErrUnreachable, err)
	}
	page = page.Context(ctx)

	start := time.Now()
	if err := page.Navigate(pageURL); err != nil {
		return "", r.classify(err, "navigate")
	}
	if err := page.WaitLoad(); err != nil {
		return "", r.classify(err, "wait load")
	}

	// Let late scripts finish; honor cancellation while waiting.
	if r.settleDelay > 0 {
		select {
		case <-time.After(r.settleDelay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", r.classify(err, "serialize")
	}

	r.logger.Debug("page rendered",
		"url", pageURL,
		"bytes", len(html),
		"elapsed", time.Since(start))

	return html, nil
}

func (r *Renderer) classify(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnreachable, op, err)
}
