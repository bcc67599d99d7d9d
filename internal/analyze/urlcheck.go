package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/seoscan/internal/model"
)

const (
	// maxURLLen is the full-URL length above which truncation in
	// results and shares becomes likely.
	maxURLLen = 75

	// maxPathDepth is the deepest path nesting before the page reads
	// as buried.
	maxPathDepth = 3
)

// trackingParams are query parameters that only exist for analytics
// attribution and create duplicate URL variants.
var trackingParams = map[string]bool{
	"ref":       true,
	"fbclid":    true,
	"gclid":     true,
	"msclkid":   true,
	"mc_cid":    true,
	"mc_eid":    true,
	"igshid":    true,
	"yclid":     true,
	"_ga":       true,
	"session":   true,
	"sid":       true,
	"phpsessid": true,
}

// idOnlySegment matches slugs that are a bare numeric or prefixed
// numeric identifier, e.g. "1234", "p1234", "id-42".
var idOnlySegment = regexp.MustCompile(`^(?:p|id|post|node|item)?[-_]?\d+$`)

// unsafePathChars are characters outside the lowercase letter, digit,
// hyphen, underscore, dot, and tilde set URL slugs should stick to.
var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._~-]`)

// URLAnalyzer audits the structure of the canonical URL itself: length,
// depth, slug quality, and query noise. It needs no network access and
// no inference.
type URLAnalyzer struct{}

// NewURLAnalyzer creates the URL stage.
func NewURLAnalyzer() *URLAnalyzer { return &URLAnalyzer{} }

// Name implements pipeline.Analyzer.
func (a *URLAnalyzer) Name() string { return "url" }

// Category implements pipeline.Analyzer.
func (a *URLAnalyzer) Category() model.Category { return model.CategoryURL }

// Ready implements pipeline.Analyzer.
func (a *URLAnalyzer) Ready(facts *model.PageFacts) (bool, string) {
	if facts.CanonicalURL == "" {
		return false, "no canonical URL recorded"
	}
	return true, ""
}

// Analyze implements pipeline.Analyzer.
func (a *URLAnalyzer) Analyze(_ context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	var findings []model.Finding

	if n := len(facts.CanonicalURL); n > maxURLLen {
		findings = append(findings, model.NewFinding("url_too_long", model.CategoryURL,
			"the URL is very long",
			fmt.Sprintf("the URL is %d characters; under %d is recommended", n, maxURLLen)))
	}

	if depth := len(facts.PathSegments); depth > maxPathDepth {
		findings = append(findings, model.NewFinding("url_too_deep", model.CategoryURL,
			"the URL path is deeply nested",
			fmt.Sprintf("the path has %d levels; %d or fewer is recommended", depth, maxPathDepth)))
	}

	findings = append(findings, segmentFindings(facts.PathSegments)...)
	findings = append(findings, queryFindings(facts.QueryParams)...)
	return findings, nil
}

// segmentFindings inspects each decoded path segment. Page-level
// findings fire once on the first offending segment rather than per
// segment, since the fix is the same either way.
func segmentFindings(segments []string) []model.Finding {
	var findings []model.Finding
	var underscores, uppercase, unsafeSeg string

	for _, seg := range segments {
		if underscores == "" && strings.Contains(seg, "_") {
			underscores = seg
		}
		if uppercase == "" && strings.ContainsFunc(seg, unicode.IsUpper) {
			uppercase = seg
		}
		if unsafeSeg == "" {
			cleaned := strings.ReplaceAll(seg, "_", "")
			if unsafePathChars.MatchString(cleaned) {
				unsafeSeg = seg
			}
		}
	}

	if underscores != "" {
		findings = append(findings, model.NewFinding("url_underscores", model.CategoryURL,
			"the URL uses underscores as word separators",
			fmt.Sprintf("the path segment %q contains underscores", underscores)))
	}
	if uppercase != "" {
		findings = append(findings, model.NewFinding("url_uppercase", model.CategoryURL,
			"the URL path contains uppercase letters",
			fmt.Sprintf("the path segment %q is not lowercase", uppercase)))
	}
	if unsafeSeg != "" {
		findings = append(findings, model.NewFinding("url_stop_characters", model.CategoryURL,
			"the URL path contains unsafe characters",
			fmt.Sprintf("the path segment %q needs percent-encoding", unsafeSeg)))
	}

	if len(segments) > 0 {
		if slug := segments[len(segments)-1]; idOnlySegment.MatchString(strings.ToLower(slug)) {
			findings = append(findings, model.NewFinding("url_keyword_poor", model.CategoryURL,
				"the URL slug carries no keyword signal",
				fmt.Sprintf("the final path segment %q is an opaque identifier", slug)))
		}
	}
	return findings
}

func queryFindings(params []string) []model.Finding {
	var noisy []string
	for _, p := range params {
		if trackingParams[strings.ToLower(p)] || strings.HasPrefix(strings.ToLower(p), "utm_") {
			noisy = append(noisy, p)
		}
	}
	if len(noisy) == 0 {
		return nil
	}
	return []model.Finding{model.NewFinding("url_query_noise", model.CategoryURL,
		"the URL carries tracking query parameters",
		fmt.Sprintf("tracking parameters present: %s", strings.Join(noisy, ", ")))}
}
