package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
)

const (
	// stuffingDensity is the term frequency above which repetition reads
	// as stuffing rather than emphasis.
	stuffingDensity = 0.03

	// stuffingMinCount keeps short pages from tripping the density check
	// on a handful of repetitions.
	stuffingMinCount = 5

	// topTermCount is how many dominant body terms are compared against
	// the title.
	topTermCount = 3

	// minTokenLen drops tokens too short to carry keyword signal.
	minTokenLen = 3
)

const keywordSystemPrompt = "You are an SEO keyword analyst. Given a " +
	"page in markdown together with its title, name up to three search " +
	"terms the page could plausibly rank for but does not use, one per " +
	"line. If there are none, answer with the single word OK."

// stopwords are excluded from term frequency analysis.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"has": true, "have": true, "was": true, "were": true, "one": true,
	"our": true, "out": true, "his": true, "her": true, "its": true,
	"this": true, "that": true, "with": true, "from": true, "they": true,
	"will": true, "would": true, "there": true, "their": true, "what": true,
	"about": true, "which": true, "when": true, "more": true, "your": true,
	"into": true, "than": true, "them": true, "then": true, "these": true,
	"some": true, "other": true, "such": true, "only": true, "also": true,
	"how": true, "any": true, "each": true, "been": true, "being": true,
}

// KeywordAnalyzer audits term frequency: stuffing, alignment between
// the body's dominant terms and the title, and coverage of the terms
// the site declares it targets.
type KeywordAnalyzer struct {
	enricher

	// targetKeywords are the configured search terms for this host.
	targetKeywords []string
}

// NewKeywordAnalyzer creates the keyword stage. client may be nil to
// skip the opportunity review.
func NewKeywordAnalyzer(client inference.Client, pacer Pacer, logger *slog.Logger, targetKeywords []string) *KeywordAnalyzer {
	return &KeywordAnalyzer{
		enricher:       newEnricher(client, pacer, logger),
		targetKeywords: targetKeywords,
	}
}

// Name implements pipeline.Analyzer.
func (a *KeywordAnalyzer) Name() string { return "keyword" }

// Category implements pipeline.Analyzer.
func (a *KeywordAnalyzer) Category() model.Category { return model.CategoryKeyword }

// Ready implements pipeline.Analyzer.
func (a *KeywordAnalyzer) Ready(facts *model.PageFacts) (bool, string) {
	if facts.BodyText() == "" {
		return false, "page has no text content"
	}
	return true, ""
}

// Analyze implements pipeline.Analyzer.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	findings := a.deterministic(facts)

	if !a.enabled() {
		return findings, nil
	}
	if err := a.pace(ctx); err != nil {
		return findings, err
	}

	prompt := fmt.Sprintf("Title: %s\n\n%s", facts.Title, promptContext(facts))
	answer, err := a.client.AnalyzeText(ctx, keywordSystemPrompt, prompt)
	if err != nil {
		return findings, a.tolerate("keyword", err)
	}
	answer = strings.TrimSpace(answer)
	if answer != "" && !strings.EqualFold(answer, "OK") {
		findings = append(findings, model.NewFinding("keyword_opportunity", model.CategoryKeyword,
			"the page misses plausible search terms", answer))
	}
	return findings, nil
}

func (a *KeywordAnalyzer) deterministic(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	fold := cases.Fold()
	body := fold.String(facts.BodyText())
	tokens := tokenize(body)
	freq, order := termFrequency(tokens)

	if f, ok := stuffingFinding(freq, order, len(tokens)); ok {
		findings = append(findings, f)
	}

	top := topTerms(freq, order, topTermCount)
	if f, ok := titleMismatchFinding(fold.String(facts.Title), top); ok {
		findings = append(findings, f)
	}

	findings = append(findings, a.coverageFindings(fold, body, facts)...)
	return findings
}

// tokenize splits case-folded text into letter/digit runs, dropping
// stopwords and short tokens.
func tokenize(folded string) []string {
	raw := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) < minTokenLen || stopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// termFrequency counts tokens and records first-seen order so equal
// counts break ties deterministically.
func termFrequency(tokens []string) (map[string]int, []string) {
	freq := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if freq[t] == 0 {
			order = append(order, t)
		}
		freq[t]++
	}
	return freq, order
}

func stuffingFinding(freq map[string]int, order []string, total int) (model.Finding, bool) {
	if total == 0 {
		return model.Finding{}, false
	}
	// Walk terms in first-seen order so the reported term is stable.
	for _, term := range order {
		count := freq[term]
		density := float64(count) / float64(total)
		if count >= stuffingMinCount && density > stuffingDensity {
			return model.NewFinding("keyword_stuffing", model.CategoryKeyword,
				"a term is repeated far beyond natural frequency",
				fmt.Sprintf("%q appears %d times in %d significant words (%.1f%% density)",
					term, count, total, density*100)), true
		}
	}
	return model.Finding{}, false
}

func topTerms(freq map[string]int, order []string, n int) []string {
	terms := make([]string, len(order))
	copy(terms, order)
	sort.SliceStable(terms, func(i, j int) bool {
		return freq[terms[i]] > freq[terms[j]]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func titleMismatchFinding(foldedTitle string, top []string) (model.Finding, bool) {
	if foldedTitle == "" || len(top) == 0 {
		return model.Finding{}, false
	}
	for _, term := range top {
		if strings.Contains(foldedTitle, term) {
			return model.Finding{}, false
		}
	}
	return model.NewFinding("keyword_title_mismatch", model.CategoryKeyword,
		"the body's dominant terms do not appear in the title",
		fmt.Sprintf("none of the top terms (%s) occur in the title",
			strings.Join(top, ", "))), true
}

// coverageFindings checks the configured target keywords and the page's
// own meta keywords against the body copy.
func (a *KeywordAnalyzer) coverageFindings(fold cases.Caser, foldedBody string, facts *model.PageFacts) []model.Finding {
	var findings []model.Finding

	check := func(keyword, source string) {
		kw := strings.TrimSpace(fold.String(keyword))
		if kw == "" || strings.Contains(foldedBody, kw) {
			return
		}
		findings = append(findings, model.NewFinding("keyword_opportunity", model.CategoryKeyword,
			"a declared keyword does not appear in the page copy",
			fmt.Sprintf("the %s keyword %q does not occur in the body text", source, keyword)))
	}

	for _, kw := range a.targetKeywords {
		check(kw, "configured")
	}
	for kw := range strings.SplitSeq(facts.MetaKeywords, ",") {
		check(kw, "meta")
	}
	return findings
}
