package analyze

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/pipeline"
)

// Stage costs in quota units. The heaviest two stages (content and
// keyword) fit inside the default quota together, so they run
// concurrently while the lighter stages queue behind them.
const (
	contentCost  = 1500
	keywordCost  = 1200
	imageCost    = 1000
	backlinkCost = 800
	urlCost      = 500
)

// Pacer spaces inference calls across all stages. The shared rate
// limiter satisfies it; tests pass nil to disable pacing.
type Pacer interface {
	WaitCall(ctx context.Context) error
}

// enricher is the shared language-model plumbing embedded by stages
// that enrich their deterministic findings.
type enricher struct {
	client inference.Client
	pacer  Pacer
	logger *slog.Logger
}

func newEnricher(client inference.Client, pacer Pacer, logger *slog.Logger) enricher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return enricher{client: client, pacer: pacer, logger: logger}
}

// enabled reports whether enrichment runs. A nil client means the audit
// is deterministic-only.
func (e enricher) enabled() bool { return e.client != nil }

func (e enricher) pace(ctx context.Context) error {
	if e.pacer == nil {
		return nil
	}
	return e.pacer.WaitCall(ctx)
}

// tolerate decides whether an enrichment failure should surface from
// the stage. Transient failures and context expiry bubble up so the
// stage runner can retry or record the timeout; anything else (bad key,
// rejected input) will not improve on retry, so the stage keeps its
// deterministic findings and only logs the loss.
func (e enricher) tolerate(stage string, err error) error {
	if err == nil {
		return nil
	}
	if inference.IsTransient(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return err
	}
	e.logger.Warn("enrichment skipped", "stage", stage, "error", err)
	return nil
}

// promptContext returns the page content handed to the model: the
// markdown snapshot when the scraper produced one, raw body text
// otherwise.
func promptContext(facts *model.PageFacts) string {
	if facts.Snapshot != "" {
		return facts.Snapshot
	}
	return facts.BodyText()
}

// DefaultStages declares the standard audit in its report order.
// site carries per-host settings such as target keywords; client may be
// nil to run without enrichment.
func DefaultStages(cfg *config.Config, client inference.Client, pacer Pacer, logger *slog.Logger, site config.SiteConfig) []pipeline.StageSpec {
	e := newEnricher(client, pacer, logger)

	stage := func(name string, category model.Category, cost int64, a pipeline.Analyzer) pipeline.StageSpec {
		return pipeline.StageSpec{
			Name:       name,
			Category:   category,
			Cost:       cost,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.StageTimeout,
			Analyzer:   a,
		}
	}

	return []pipeline.StageSpec{
		stage("content", model.CategoryContent, contentCost, &ContentAnalyzer{enricher: e}),
		stage("image", model.CategoryImage, imageCost, &ImageAnalyzer{enricher: e}),
		stage("keyword", model.CategoryKeyword, keywordCost, &KeywordAnalyzer{enricher: e, targetKeywords: site.Keywords}),
		stage("backlink", model.CategoryBacklink, backlinkCost, NewBacklinkAnalyzer(logger)),
		stage("url", model.CategoryURL, urlCost, NewURLAnalyzer()),
	}
}
