package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// nofollowHeavyRatio is the fraction of external links that may carry
// rel=nofollow before the page-level finding fires.
const nofollowHeavyRatio = 0.5

// linkShortenerHosts are well-known URL shortening services.
var linkShortenerHosts = map[string]bool{
	"bit.ly":      true,
	"t.co":        true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"ow.ly":       true,
	"buff.ly":     true,
	"is.gd":       true,
	"rb.gy":       true,
	"cutt.ly":     true,
}

// genericAnchors are anchor texts that describe nothing about the
// link target.
var genericAnchors = map[string]bool{
	"click here": true,
	"here":       true,
	"read more":  true,
	"learn more": true,
	"more":       true,
	"link":       true,
	"this":       true,
	"this page":  true,
}

// BacklinkAnalyzer audits the page's external link profile: anchor
// quality, link destinations, and nofollow usage. It is fully
// rule-based; no inference call improves on inspecting the anchors
// themselves.
type BacklinkAnalyzer struct {
	logger *slog.Logger
}

// NewBacklinkAnalyzer creates the backlink stage.
func NewBacklinkAnalyzer(logger *slog.Logger) *BacklinkAnalyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BacklinkAnalyzer{logger: logger}
}

// Name implements pipeline.Analyzer.
func (a *BacklinkAnalyzer) Name() string { return "backlink" }

// Category implements pipeline.Analyzer.
func (a *BacklinkAnalyzer) Category() model.Category { return model.CategoryBacklink }

// Ready implements pipeline.Analyzer.
func (a *BacklinkAnalyzer) Ready(facts *model.PageFacts) (bool, string) {
	if len(facts.ExternalLinks()) == 0 {
		return false, "page has no external links"
	}
	return true, ""
}

// Analyze implements pipeline.Analyzer.
func (a *BacklinkAnalyzer) Analyze(_ context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	external := facts.ExternalLinks()
	var findings []model.Finding
	nofollow := 0

	for _, link := range external {
		if link.NoFollow() {
			nofollow++
		}

		host := linkHost(link.Href)
		switch {
		case host == "":
			a.logger.Debug("unparseable link href", "link", link.ID, "href", link.Href)
		case net.ParseIP(host) != nil:
			findings = append(findings, model.NewFinding("bare_ip_link", model.CategoryBacklink,
				"a link points at a bare IP address",
				fmt.Sprintf("the link targets %s", host)).WithSubject(link.ID))
		case linkShortenerHosts[host]:
			findings = append(findings, model.NewFinding("link_shortener", model.CategoryBacklink,
				"a link goes through a URL shortener",
				fmt.Sprintf("the link targets the shortener %s", host)).WithSubject(link.ID))
		}

		if genericAnchors[strings.ToLower(strings.TrimSpace(link.Anchor))] {
			findings = append(findings, model.NewFinding("generic_anchor_text", model.CategoryBacklink,
				"a link uses generic anchor text",
				fmt.Sprintf("the anchor text is %q", link.Anchor)).WithSubject(link.ID))
		}
	}

	if len(external) >= 3 && float64(nofollow) > nofollowHeavyRatio*float64(len(external)) {
		findings = append(findings, model.NewFinding("nofollow_heavy", model.CategoryBacklink,
			"most external links are nofollow",
			fmt.Sprintf("%d of %d external links carry rel=nofollow", nofollow, len(external))))
	}
	return findings, nil
}

// linkHost extracts the bare lowercase host from a link target,
// dropping any port.
func linkHost(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
