package model

// Severity represents how strongly a finding affects search performance.
// It is used to order findings inside report sections and to decide which
// findings are eligible for the priority action list.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed. Values ascend with severity so that
// a simple numeric comparison yields the ranking.
type Severity int

const (
	// SeverityMinor indicates cosmetic or low-impact issues.
	// Examples: slightly long URL, a single generic anchor text.
	// Worth fixing eventually but unlikely to move rankings on its own.
	SeverityMinor Severity = iota

	// SeverityImportant indicates issues with a measurable ranking impact.
	// Examples: missing meta description, images without alt text,
	// thin content sections.
	SeverityImportant

	// SeverityCritical indicates issues that actively hurt indexing or
	// accessibility. Examples: missing H1, broken heading hierarchy,
	// keyword stuffing that risks a spam classification.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "MINOR"
	case SeverityImportant:
		return "IMPORTANT"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Category identifies the audit dimension a finding belongs to.
// Each analysis stage declares exactly one category.
type Category string

const (
	// CategoryContent covers headings, titles, meta descriptions, and body text.
	CategoryContent Category = "content"

	// CategoryImage covers image alt text, formats, and embedded metadata.
	CategoryImage Category = "image"

	// CategoryKeyword covers term frequency, alignment, and stuffing.
	CategoryKeyword Category = "keyword"

	// CategoryBacklink covers the outbound/external link profile.
	CategoryBacklink Category = "backlink"

	// CategoryURL covers the structure of the page URL itself.
	CategoryURL Category = "url"
)

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding
// type because:
// 1. It allows updating assessments without modifying type definitions
// 2. It provides a single source of truth for severity levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - Issues that actively hurt indexing or accessibility
	"missing_h1": {
		Severity:       SeverityCritical,
		Impact:         "The page has no H1 heading, so search engines cannot determine its primary topic.",
		Recommendation: "Add exactly one H1 heading that states the main topic of the page.",
	},
	"multiple_h1": {
		Severity:       SeverityCritical,
		Impact:         "Multiple H1 headings dilute the topical signal and confuse document outline parsing.",
		Recommendation: "Keep a single H1 and demote the others to H2.",
	},
	"heading_level_skip": {
		Severity:       SeverityCritical,
		Impact:         "The heading hierarchy skips levels, which breaks the document outline for crawlers and screen readers.",
		Recommendation: "Restructure headings so each level follows the previous without gaps (H1 then H2 then H3).",
	},
	"missing_title": {
		Severity:       SeverityCritical,
		Impact:         "The page has no title tag, the single strongest on-page ranking element.",
		Recommendation: "Add a unique, descriptive title of roughly 50-60 characters.",
	},
	"keyword_stuffing": {
		Severity:       SeverityCritical,
		Impact:         "A term is repeated far beyond natural frequency, which risks a spam classification and ranking penalties.",
		Recommendation: "Rewrite the affected copy using synonyms and natural phrasing; keep term density below roughly 3%.",
	},
	"page_unindexable": {
		Severity:       SeverityCritical,
		Impact:         "The page returned a non-success HTTP status, so search engines will not index it.",
		Recommendation: "Fix the server response so the canonical URL returns HTTP 200.",
	},

	// IMPORTANT - Issues with a measurable ranking impact
	"missing_meta_description": {
		Severity:       SeverityImportant,
		Impact:         "Without a meta description, search engines synthesize the snippet, usually lowering click-through rates.",
		Recommendation: "Write a meta description of roughly 120-158 characters that summarizes the page and invites the click.",
	},
	"meta_description_length": {
		Severity:       SeverityImportant,
		Impact:         "A too-short or too-long meta description is truncated or ignored in result snippets.",
		Recommendation: "Keep the meta description between roughly 120 and 158 characters.",
	},
	"title_length": {
		Severity:       SeverityImportant,
		Impact:         "Titles outside the 30-60 character band are truncated in results or waste ranking signal.",
		Recommendation: "Rewrite the title to roughly 50-60 characters with the primary keyword near the front.",
	},
	"image_alt_missing": {
		Severity:       SeverityImportant,
		Impact:         "Images without alt text are invisible to image search and to screen readers.",
		Recommendation: "Add concise, descriptive alt text to every content image.",
	},
	"image_alt_poor": {
		Severity:       SeverityImportant,
		Impact:         "Alt text that is empty, a filename, or boilerplate provides no ranking or accessibility value.",
		Recommendation: "Replace placeholder alt text with a short description of what the image shows.",
	},
	"thin_content": {
		Severity:       SeverityImportant,
		Impact:         "Pages with very little body text are treated as low-value and rank poorly.",
		Recommendation: "Expand the page to cover its topic in depth; aim for at least 300 words of useful copy.",
	},
	"keyword_title_mismatch": {
		Severity:       SeverityImportant,
		Impact:         "The terms the body emphasizes do not appear in the title, splitting the topical signal.",
		Recommendation: "Align the title with the page's dominant terms, or refocus the copy on the intended keyword.",
	},
	"no_external_links": {
		Severity:       SeverityImportant,
		Impact:         "Pages that cite no outside sources tend to be judged less trustworthy for informational queries.",
		Recommendation: "Link to a few authoritative external sources that support the page's claims.",
	},
	"image_format_unsuitable": {
		Severity:       SeverityImportant,
		Impact:         "Formats outside the common web set (JPEG, PNG, WebP) load slowly or fail image indexing.",
		Recommendation: "Convert images to WebP or JPEG and serve appropriately sized variants.",
	},
	"url_keyword_poor": {
		Severity:       SeverityImportant,
		Impact:         "URL path segments made of IDs or noise words carry no keyword signal.",
		Recommendation: "Use short, hyphenated, keyword-bearing slugs in the URL path.",
	},

	// MINOR - Cosmetic or low-impact issues
	"url_too_long": {
		Severity:       SeverityMinor,
		Impact:         "Very long URLs are truncated in results and shared links, and are harder to crawl consistently.",
		Recommendation: "Shorten the URL to under roughly 75 characters where practical.",
	},
	"url_too_deep": {
		Severity:       SeverityMinor,
		Impact:         "Deeply nested paths suggest the page is far from the site root, weakening its perceived importance.",
		Recommendation: "Flatten the URL structure to three path levels or fewer.",
	},
	"url_underscores": {
		Severity:       SeverityMinor,
		Impact:         "Underscores are not treated as word separators, so multi-word slugs lose keyword value.",
		Recommendation: "Use hyphens instead of underscores in URL slugs.",
	},
	"url_uppercase": {
		Severity:       SeverityMinor,
		Impact:         "Mixed-case URLs invite duplicate-content variants when servers treat paths case-sensitively.",
		Recommendation: "Lowercase all URL paths and redirect legacy variants.",
	},
	"url_stop_characters": {
		Severity:       SeverityMinor,
		Impact:         "Unsafe or reserved characters in the path require encoding and break naive link handling.",
		Recommendation: "Restrict URL paths to lowercase letters, digits, and hyphens.",
	},
	"url_query_noise": {
		Severity:       SeverityMinor,
		Impact:         "Tracking or session parameters create duplicate URL variants that split ranking signal.",
		Recommendation: "Strip non-essential query parameters and declare a canonical URL.",
	},
	"generic_anchor_text": {
		Severity:       SeverityMinor,
		Impact:         "Anchors like \"click here\" waste the descriptive signal links carry.",
		Recommendation: "Use anchor text that describes the link target.",
	},
	"link_shortener": {
		Severity:       SeverityMinor,
		Impact:         "Shortened links hide the destination from crawlers and may decay over time.",
		Recommendation: "Link directly to the destination URL.",
	},
	"bare_ip_link": {
		Severity:       SeverityMinor,
		Impact:         "Links to bare IP addresses look untrustworthy and carry no domain signal.",
		Recommendation: "Link to the destination's domain name instead of its IP address.",
	},
	"nofollow_heavy": {
		Severity:       SeverityMinor,
		Impact:         "When most external links are nofollow, the page passes little endorsement signal.",
		Recommendation: "Reserve nofollow for untrusted or paid links only.",
	},
	"exif_metadata": {
		Severity:       SeverityMinor,
		Impact:         "EXIF metadata bloats image payloads and may embed location or device details.",
		Recommendation: "Strip EXIF metadata from images before publishing.",
	},
	"heading_empty": {
		Severity:       SeverityMinor,
		Impact:         "Empty heading elements add outline noise without any topical signal.",
		Recommendation: "Remove empty headings or fill them with descriptive text.",
	},
	"paragraph_very_short": {
		Severity:       SeverityMinor,
		Impact:         "Many one-line paragraphs fragment the copy and read as filler to quality classifiers.",
		Recommendation: "Merge fragmentary paragraphs into substantive ones.",
	},
	"missing_og_tags": {
		Severity:       SeverityMinor,
		Impact:         "Without Open Graph tags, shares on social platforms render with poor previews.",
		Recommendation: "Add og:title, og:description, and og:image meta tags.",
	},
	"content_advice": {
		Severity:       SeverityMinor,
		Impact:         "The model review identified copy that could read better or cover its topic more fully.",
		Recommendation: "Review the suggestion and apply what fits the page's voice.",
	},
	"keyword_opportunity": {
		Severity:       SeverityMinor,
		Impact:         "Terms the page could plausibly rank for are missing from the copy.",
		Recommendation: "Work the missing terms into headings or body copy where they fit naturally.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityMinor if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityMinor
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityMinor if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityMinor,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess its impact.",
	}
}
