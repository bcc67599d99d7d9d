package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
)

// Thresholds for the rule-based content checks. The length bands follow
// the limits search engines render in result snippets.
const (
	titleMinLen    = 30
	titleMaxLen    = 60
	metaDescMinLen = 120
	metaDescMaxLen = 158

	// thinContentWords is the body word count below which the page is
	// treated as thin.
	thinContentWords = 300

	// shortParagraphLen marks a paragraph as fragmentary.
	shortParagraphLen = 40

	// shortParagraphRatio is how many paragraphs must be fragmentary
	// before the page-level finding fires, as a fraction of all
	// paragraphs.
	shortParagraphRatio = 0.5
)

const contentSystemPrompt = "You are an experienced SEO content editor. " +
	"Given a page in markdown, point out the single most impactful " +
	"improvement to its copy in at most three sentences. If the copy " +
	"needs no work, answer with the single word OK."

// ContentAnalyzer audits the page's text structure: title, meta
// description, heading hierarchy, and body copy depth.
type ContentAnalyzer struct {
	enricher
}

// NewContentAnalyzer creates the content stage. client may be nil to
// run the rule-based checks only.
func NewContentAnalyzer(client inference.Client, pacer Pacer, logger *slog.Logger) *ContentAnalyzer {
	return &ContentAnalyzer{enricher: newEnricher(client, pacer, logger)}
}

// Name implements pipeline.Analyzer.
func (a *ContentAnalyzer) Name() string { return "content" }

// Category implements pipeline.Analyzer.
func (a *ContentAnalyzer) Category() model.Category { return model.CategoryContent }

// Ready implements pipeline.Analyzer.
func (a *ContentAnalyzer) Ready(facts *model.PageFacts) (bool, string) {
	if len(facts.Blocks) == 0 && facts.Title == "" {
		return false, "page has no text content"
	}
	return true, ""
}

// Analyze implements pipeline.Analyzer.
func (a *ContentAnalyzer) Analyze(ctx context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	findings := a.deterministic(facts)

	if !a.enabled() {
		return findings, nil
	}
	if err := a.pace(ctx); err != nil {
		return findings, err
	}

	advice, err := a.client.AnalyzeText(ctx, contentSystemPrompt, promptContext(facts))
	if err != nil {
		return findings, a.tolerate("content", err)
	}
	advice = strings.TrimSpace(advice)
	if advice != "" && !strings.EqualFold(advice, "OK") {
		findings = append(findings, model.NewFinding("content_advice", model.CategoryContent,
			"the page copy has room for improvement", advice))
	}
	return findings, nil
}

func (a *ContentAnalyzer) deterministic(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	if facts.StatusCode >= 400 {
		findings = append(findings, model.NewFinding("page_unindexable", model.CategoryContent,
			"the page is not indexable",
			fmt.Sprintf("the canonical URL returned HTTP %d", facts.StatusCode)))
	}

	findings = append(findings, a.titleFindings(facts)...)
	findings = append(findings, a.metaFindings(facts)...)
	findings = append(findings, a.headingFindings(facts)...)
	findings = append(findings, a.bodyFindings(facts)...)
	return findings
}

func (a *ContentAnalyzer) titleFindings(facts *model.PageFacts) []model.Finding {
	if facts.Title == "" {
		return []model.Finding{model.NewFinding("missing_title", model.CategoryContent,
			"the page has no title tag", "no <title> element was found")}
	}

	n := utf8.RuneCountInString(facts.Title)
	if n < titleMinLen || n > titleMaxLen {
		return []model.Finding{model.NewFinding("title_length", model.CategoryContent,
			"the title length is outside the recommended band",
			fmt.Sprintf("the title is %d characters; the recommended range is %d-%d",
				n, titleMinLen, titleMaxLen))}
	}
	return nil
}

func (a *ContentAnalyzer) metaFindings(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	if facts.MetaDescription == "" {
		findings = append(findings, model.NewFinding("missing_meta_description", model.CategoryContent,
			"the page has no meta description", "no meta description element was found"))
	} else if n := utf8.RuneCountInString(facts.MetaDescription); n < metaDescMinLen || n > metaDescMaxLen {
		findings = append(findings, model.NewFinding("meta_description_length", model.CategoryContent,
			"the meta description length is outside the recommended band",
			fmt.Sprintf("the meta description is %d characters; the recommended range is %d-%d",
				n, metaDescMinLen, metaDescMaxLen)))
	}

	if facts.OpenGraph["title"] == "" || facts.OpenGraph["description"] == "" {
		findings = append(findings, model.NewFinding("missing_og_tags", model.CategoryContent,
			"Open Graph tags are incomplete",
			"og:title or og:description is missing"))
	}
	return findings
}

func (a *ContentAnalyzer) headingFindings(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	h1s := facts.Headings(1)
	switch {
	case len(h1s) == 0:
		findings = append(findings, model.NewFinding("missing_h1", model.CategoryContent,
			"the page has no H1 heading", "0 H1 elements were found"))
	case len(h1s) > 1:
		findings = append(findings, model.NewFinding("multiple_h1", model.CategoryContent,
			"the page has more than one H1 heading",
			fmt.Sprintf("%d H1 elements were found", len(h1s))))
	}

	// Walk headings in document order; a jump of more than one level
	// down breaks the outline.
	prev := 0
	for _, b := range facts.Blocks {
		level := b.Role.HeadingLevel()
		if level == 0 {
			continue
		}
		if b.Text == "" {
			findings = append(findings, model.NewFinding("heading_empty", model.CategoryContent,
				"a heading element is empty",
				fmt.Sprintf("the %s element has no text", b.RoleText)).WithSubject(b.ID))
		}
		if prev != 0 && level > prev+1 {
			findings = append(findings, model.NewFinding("heading_level_skip", model.CategoryContent,
				"the heading hierarchy skips a level",
				fmt.Sprintf("an H%d follows an H%d with no H%d between them",
					level, prev, prev+1)).WithSubject(b.ID))
		}
		prev = level
	}
	return findings
}

func (a *ContentAnalyzer) bodyFindings(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	words := len(strings.Fields(facts.BodyText()))
	if words < thinContentWords {
		findings = append(findings, model.NewFinding("thin_content", model.CategoryContent,
			"the page has very little body text",
			fmt.Sprintf("the body contains roughly %d words; %d or more is recommended",
				words, thinContentWords)))
	}

	paragraphs := facts.Paragraphs()
	if len(paragraphs) > 0 {
		short := 0
		for _, p := range paragraphs {
			if utf8.RuneCountInString(p.Text) < shortParagraphLen {
				short++
			}
		}
		if float64(short) >= shortParagraphRatio*float64(len(paragraphs)) && short > 1 {
			findings = append(findings, model.NewFinding("paragraph_very_short", model.CategoryContent,
				"much of the copy is fragmentary",
				fmt.Sprintf("%d of %d paragraphs are under %d characters",
					short, len(paragraphs), shortParagraphLen)))
		}
	}
	return findings
}
