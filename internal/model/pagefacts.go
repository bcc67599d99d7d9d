package model

import (
	"strings"
	"time"
)

// BlockRole classifies a text block extracted from the page.
//
// Design decision: heading levels are encoded in the role itself rather
// than as a separate field, so a block is self-describing and the zero
// value (paragraph) is the most common case.
type BlockRole int

const (
	// RoleParagraph is body copy inside <p> elements.
	RoleParagraph BlockRole = iota

	// RoleListItem is an <li> entry.
	RoleListItem

	// RoleHeading1 through RoleHeading6 map to <h1>..<h6>.
	RoleHeading1
	RoleHeading2
	RoleHeading3
	RoleHeading4
	RoleHeading5
	RoleHeading6
)

// String returns a human-readable representation of the block role.
func (r BlockRole) String() string {
	switch r {
	case RoleParagraph:
		return "paragraph"
	case RoleListItem:
		return "list_item"
	case RoleHeading1, RoleHeading2, RoleHeading3, RoleHeading4, RoleHeading5, RoleHeading6:
		return "h" + string(rune('0'+r.HeadingLevel()))
	default:
		return "unknown"
	}
}

// HeadingLevel returns 1..6 for heading roles and 0 for non-headings.
func (r BlockRole) HeadingLevel() int {
	if r >= RoleHeading1 && r <= RoleHeading6 {
		return int(r-RoleHeading1) + 1
	}
	return 0
}

// TextBlock is one unit of visible page text in document order.
type TextBlock struct {
	// ID is a stable identifier within a single audit run, e.g. "block-7".
	ID string `json:"id"`

	// Role classifies the block (heading level, paragraph, list item).
	Role BlockRole `json:"-"`

	// RoleText is the string form of Role for serialization.
	RoleText string `json:"role"`

	// Text is the normalized visible text of the block.
	Text string `json:"text"`
}

// ImageRef is one image discovered on the page, in document order.
type ImageRef struct {
	// ID is a stable identifier within a single audit run, e.g. "image-2".
	ID string `json:"id"`

	// SourceURL is the resolved absolute URL of the image.
	SourceURL string `json:"source_url"`

	// LocalPath is the path of the downloaded copy, empty if the
	// download was skipped or failed.
	LocalPath string `json:"local_path,omitempty"`

	// Alt is the alt attribute text, empty if absent.
	Alt string `json:"alt"`

	// HasAlt distinguishes alt="" from a missing alt attribute.
	HasAlt bool `json:"has_alt"`

	// Context is nearby text (caption, surrounding paragraph) used to
	// judge whether the alt text matches the image's role on the page.
	Context string `json:"context,omitempty"`
}

// LinkRef is one anchor discovered on the page, in document order.
type LinkRef struct {
	// ID is a stable identifier within a single audit run, e.g. "link-4".
	ID string `json:"id"`

	// Href is the resolved absolute link target.
	Href string `json:"href"`

	// Anchor is the visible anchor text.
	Anchor string `json:"anchor"`

	// Internal is true when the link stays on the audited host.
	Internal bool `json:"internal"`

	// Rel is the raw rel attribute, e.g. "nofollow noopener".
	Rel string `json:"rel,omitempty"`
}

// NoFollow reports whether the link carries rel=nofollow.
func (l LinkRef) NoFollow() bool {
	for _, v := range strings.Fields(strings.ToLower(l.Rel)) {
		if v == "nofollow" {
			return true
		}
	}
	return false
}

// PageFacts is the immutable snapshot of a scraped page that every
// analysis stage reads from. It is built once by the scraper and never
// mutated afterwards; stages receive it by pointer but must treat it as
// read-only.
//
// Design decision: element IDs (block-N, image-N, link-N) are assigned in
// document order during extraction and are stable for the lifetime of a
// run, so findings can reference specific elements and the report can
// join those references back to the evidence.
type PageFacts struct {
	// CanonicalURL is the URL the audit ran against after redirects.
	CanonicalURL string `json:"canonical_url"`

	// FetchedAt is when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`

	// StatusCode is the final HTTP status of the fetch.
	StatusCode int `json:"status_code"`

	// Rendered is true when the snapshot came from a headless browser
	// rather than the raw HTTP response.
	Rendered bool `json:"rendered"`

	// RawHTMLLen and RenderedHTMLLen record payload sizes in bytes.
	// RenderedHTMLLen is zero when Rendered is false.
	RawHTMLLen      int `json:"raw_html_len"`
	RenderedHTMLLen int `json:"rendered_html_len,omitempty"`

	// Title is the <title> text, empty if absent.
	Title string `json:"title"`

	// MetaDescription is the meta description content, empty if absent.
	MetaDescription string `json:"meta_description"`

	// MetaKeywords is the deprecated meta keywords content, kept because
	// keyword analysis still compares body terms against it when present.
	MetaKeywords string `json:"meta_keywords,omitempty"`

	// OpenGraph holds og:* meta properties by unprefixed name
	// (e.g. "title", "image").
	OpenGraph map[string]string `json:"open_graph,omitempty"`

	// Blocks is the visible text in document order.
	Blocks []TextBlock `json:"blocks"`

	// Images are the page images in document order.
	Images []ImageRef `json:"images"`

	// Links are the page anchors in document order.
	Links []LinkRef `json:"links"`

	// PathSegments are the decoded segments of the canonical URL path.
	PathSegments []string `json:"path_segments"`

	// QueryParams are the query parameter names of the canonical URL.
	QueryParams []string `json:"query_params,omitempty"`

	// Snapshot is a markdown rendering of the page body, used as prompt
	// context for language-model enrichment.
	Snapshot string `json:"-"`
}

// Headings returns the heading blocks at the given level in document order.
func (p *PageFacts) Headings(level int) []TextBlock {
	var out []TextBlock
	for _, b := range p.Blocks {
		if b.Role.HeadingLevel() == level {
			out = append(out, b)
		}
	}
	return out
}

// Paragraphs returns the paragraph blocks in document order.
func (p *PageFacts) Paragraphs() []TextBlock {
	var out []TextBlock
	for _, b := range p.Blocks {
		if b.Role == RoleParagraph {
			out = append(out, b)
		}
	}
	return out
}

// ExternalLinks returns the links that leave the audited host, in
// document order.
func (p *PageFacts) ExternalLinks() []LinkRef {
	var out []LinkRef
	for _, l := range p.Links {
		if !l.Internal {
			out = append(out, l)
		}
	}
	return out
}

// BodyText joins all block text with newlines. Used for word counts and
// keyword tokenization.
func (p *PageFacts) BodyText() string {
	parts := make([]string, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
