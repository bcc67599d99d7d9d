package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// Scraper acquires a page and assembles the PageFacts snapshot.
type Scraper struct {
	fetcher    *Fetcher
	renderer   *Renderer
	downloader *Downloader
	render     bool
	logger     *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithFetcher sets the HTTP fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// WithRenderer enables headless-browser rendering using the given renderer.
func WithRenderer(r *Renderer) Option {
	return func(s *Scraper) {
		s.renderer = r
		s.render = true
	}
}

// WithDownloader enables local image downloads.
func WithDownloader(d *Downloader) Option {
	return func(s *Scraper) {
		s.downloader = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// New creates a Scraper. Without options it fetches over plain HTTP and
// skips image downloads.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: NewFetcher(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire fetches the target page and builds its PageFacts snapshot.
// This is the only operation whose failure aborts an audit: without a
// snapshot there is nothing for any stage to analyze.
func (s *Scraper) Acquire(ctx context.Context, target string) (*model.PageFacts, error) {
	fetched, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	pageHTML := string(fetched.Body)
	rendered := false
	renderedLen := 0

	if s.render && s.renderer != nil {
		renderedHTML, rerr := s.renderer.Render(ctx, fetched.FinalURL)
		if rerr != nil {
			// Rendering is an upgrade, not a requirement. Fall back to
			// the raw fetch and note the downgrade.
			s.logger.Warn("render failed, using raw HTML", "url", fetched.FinalURL, "error", rerr)
		} else {
			pageHTML = renderedHTML
			rendered = true
			renderedLen = len(renderedHTML)
		}
	}

	parser, err := NewParser(fetched.FinalURL)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}

	if len(parsed.Blocks) == 0 && len(parsed.Images) == 0 && len(parsed.Links) == 0 && parsed.Title == "" {
		return nil, ErrNoContent
	}

	images := parsed.Images
	if s.downloader != nil {
		images = s.downloader.Download(ctx, images)
	}

	pathSegments, queryParams := splitURL(fetched.FinalURL)

	facts := &model.PageFacts{
		CanonicalURL:    fetched.FinalURL,
		FetchedAt:       time.Now(),
		StatusCode:      fetched.StatusCode,
		Rendered:        rendered,
		RawHTMLLen:      len(fetched.Body),
		RenderedHTMLLen: renderedLen,
		Title:           parsed.Title,
		MetaDescription: parsed.MetaDescription,
		MetaKeywords:    parsed.MetaKeywords,
		OpenGraph:       parsed.OpenGraph,
		Blocks:          parsed.Blocks,
		Images:          images,
		Links:           parsed.Links,
		PathSegments:    pathSegments,
		QueryParams:     queryParams,
		Snapshot:        Snapshot(pageHTML, fetched.FinalURL),
	}

	s.logger.Debug("page facts assembled",
		"url", facts.CanonicalURL,
		"blocks", len(facts.Blocks),
		"images", len(facts.Images),
		"links", len(facts.Links),
		"rendered", facts.Rendered)

	return facts, nil
}

// splitURL decomposes a URL into decoded path segments and sorted query
// parameter names.
func splitURL(rawURL string) (segments, params []string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil
	}

	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		if decoded, derr := url.PathUnescape(seg); derr == nil {
			seg = decoded
		}
		segments = append(segments, seg)
	}

	for name := range u.Query() {
		params = append(params, name)
	}
	sort.Strings(params)

	return segments, params
}
