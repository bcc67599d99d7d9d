package scrape

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/seoscan/internal/model"
)

// Extraction limits. A page with hundreds of headings or images does not
// need them all analyzed; the counts alone already tell the story, and
// bounded extraction keeps inference prompts within model context.
const (
	maxHeadingsPerLevel = 10
	maxParagraphs       = 20
	maxListItems        = 20
	maxImages           = 10
	maxLinks            = 100
	paragraphTextLimit  = 200
	contextTextLimit    = 200
)

// Parser extracts PageFacts elements from HTML content.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative URLs and classifying links as internal or external.
	baseURL *url.URL
}

// ParseResult contains everything a single parsing pass extracted.
// Element slices are in document order with IDs already assigned.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// MetaDescription is the meta description content.
	MetaDescription string

	// MetaKeywords is the meta keywords content.
	MetaKeywords string

	// OpenGraph holds og:* properties by unprefixed name.
	OpenGraph map[string]string

	// Blocks is the visible text in document order.
	Blocks []model.TextBlock

	// Images are the page images in document order.
	Images []model.ImageRef

	// Links are the page anchors in document order.
	Links []model.LinkRef
}

// NewParser creates a parser for a page at baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base URL: %v", ErrMalformed, err)
	}
	return &Parser{baseURL: u}, nil
}

// headingRoles maps tag names to block roles.
var headingRoles = map[string]model.BlockRole{
	"h1": model.RoleHeading1,
	"h2": model.RoleHeading2,
	"h3": model.RoleHeading3,
	"h4": model.RoleHeading4,
	"h5": model.RoleHeading5,
	"h6": model.RoleHeading6,
}

// walkState tracks per-pass counters and the running context for images.
type walkState struct {
	result         *ParseResult
	headingCounts  map[model.BlockRole]int
	paragraphCount int
	listItemCount  int
	seenImages     map[string]bool
	lastContext    string
}

// Parse parses HTML content and extracts all PageFacts elements in a
// single DOM walk.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	st := &walkState{
		result: &ParseResult{
			OpenGraph: make(map[string]string),
			Blocks:    make([]model.TextBlock, 0),
			Images:    make([]model.ImageRef, 0),
			Links:     make([]model.LinkRef, 0),
		},
		headingCounts: make(map[model.BlockRole]int),
		seenImages:    make(map[string]bool),
	}

	p.walk(doc, st)
	return st.result, nil
}

func (p *Parser) walk(n *html.Node, st *walkState) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "title":
			if st.result.Title == "" {
				st.result.Title = normalizeText(textContent(n))
			}
		case "meta":
			p.handleMeta(n, st.result)
		case "p":
			if st.paragraphCount < maxParagraphs {
				if text := normalizeText(textContent(n)); text != "" {
					st.paragraphCount++
					p.addBlock(st, model.RoleParagraph, truncate(text, paragraphTextLimit))
				}
			}
		case "li":
			if st.listItemCount < maxListItems {
				if text := normalizeText(textContent(n)); text != "" {
					st.listItemCount++
					p.addBlock(st, model.RoleListItem, truncate(text, paragraphTextLimit))
				}
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			role := headingRoles[n.Data]
			if st.headingCounts[role] < maxHeadingsPerLevel {
				st.headingCounts[role]++
				// Empty headings are captured too; the content stage
				// flags them.
				p.addBlock(st, role, normalizeText(textContent(n)))
			}
		case "img":
			p.handleImage(n, st)
		case "a":
			p.handleLink(n, st)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, st)
	}
}

func (p *Parser) addBlock(st *walkState, role model.BlockRole, text string) {
	st.result.Blocks = append(st.result.Blocks, model.TextBlock{
		ID:       "block-" + strconv.Itoa(len(st.result.Blocks)),
		Role:     role,
		RoleText: role.String(),
		Text:     text,
	})
	if text != "" {
		st.lastContext = truncate(text, contextTextLimit)
	}
}

func (p *Parser) handleMeta(n *html.Node, result *ParseResult) {
	name := strings.ToLower(attr(n, "name"))
	property := strings.ToLower(attr(n, "property"))
	content := attr(n, "content")

	switch {
	case name == "description" && result.MetaDescription == "":
		result.MetaDescription = normalizeText(content)
	case name == "keywords" && result.MetaKeywords == "":
		result.MetaKeywords = normalizeText(content)
	case strings.HasPrefix(property, "og:"):
		key := strings.TrimPrefix(property, "og:")
		if _, exists := result.OpenGraph[key]; !exists {
			result.OpenGraph[key] = normalizeText(content)
		}
	}
}

func (p *Parser) handleImage(n *html.Node, st *walkState) {
	if len(st.result.Images) >= maxImages {
		return
	}

	src := attr(n, "src")
	if src == "" || strings.HasPrefix(src, "data:") {
		return
	}
	resolved := p.resolve(src)
	if resolved == "" || st.seenImages[resolved] {
		return
	}
	st.seenImages[resolved] = true

	alt, hasAlt := attrWithPresence(n, "alt")

	st.result.Images = append(st.result.Images, model.ImageRef{
		ID:        "image-" + strconv.Itoa(len(st.result.Images)),
		SourceURL: resolved,
		Alt:       normalizeText(alt),
		HasAlt:    hasAlt,
		Context:   st.lastContext,
	})
}

func (p *Parser) handleLink(n *html.Node, st *walkState) {
	if len(st.result.Links) >= maxLinks {
		return
	}

	href := attr(n, "href")
	if href == "" || strings.HasPrefix(href, "#") {
		return
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return
	}

	resolved := p.resolve(href)
	if resolved == "" {
		return
	}
	target, err := url.Parse(resolved)
	if err != nil {
		return
	}

	st.result.Links = append(st.result.Links, model.LinkRef{
		ID:       "link-" + strconv.Itoa(len(st.result.Links)),
		Href:     resolved,
		Anchor:   normalizeText(textContent(n)),
		Internal: sameHost(p.baseURL.Host, target.Host),
		Rel:      attr(n, "rel"),
	})
}

// resolve turns a possibly relative reference into an absolute URL.
// Returns "" for references that cannot be resolved.
func (p *Parser) resolve(ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	abs := p.baseURL.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

// sameHost compares hosts ignoring case and a leading "www." so that
// links to www.example.com from example.com count as internal.
func sameHost(a, b string) bool {
	trim := func(h string) string {
		h = strings.ToLower(h)
		return strings.TrimPrefix(h, "www.")
	}
	return trim(a) == trim(b)
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// normalizeText collapses all whitespace runs to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	total := 0
	for _, r := range runes {
		total += len(string(r))
		if total > limit {
			break
		}
		out = append(out, r)
	}
	return string(out)
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// attrWithPresence additionally reports whether the attribute exists,
// so alt="" can be distinguished from a missing alt.
func attrWithPresence(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
