// Package parse implements the DocumentParser collaborator (spec §1): HTML
// extraction into the four extracted field buckets (title, headings,
// highlighted, content) plus discovered links.
package parse

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/webdex/webdex/pkg/core"
)

// highlightClassMarkers and contentClassMarkers match the `[class*=...]`
// selector groups from spec §4.4 step 6.
var (
	highlightClassMarkers = []string{"highlight", "important", "bold", "italic", "emphasize"}
	contentClassMarkers   = []string{"content", "post", "story"}
)

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var highlightAtoms = map[atom.Atom]bool{
	atom.Strong: true, atom.B: true, atom.I: true, atom.Em: true, atom.Li: true,
}

var contentAtoms = map[atom.Atom]bool{
	atom.Div: true, atom.Article: true, atom.Main: true, atom.Section: true, atom.P: true,
}

// Parser extracts an ExtractedPage from raw HTML.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse walks the parsed DOM once, bucketing element text into the four
// selector groups spec §4.4 step 6 names, and collects every <a href> target
// verbatim (no URL normalization, per spec §9).
func (p *Parser) Parse(reader io.Reader) (core.ExtractedPage, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return core.ExtractedPage{}, err
	}

	e := extractor{}
	e.walk(doc)

	return core.ExtractedPage{
		Title:       normalize(e.title),
		Headings:    normalize(e.headings.String()),
		Highlighted: normalize(e.highlighted.String()),
		Content:     normalize(e.content.String()),
		Links:       e.links,
	}, nil
}

// ParseString is a convenience wrapper over Parse for callers holding the
// body as a string rather than a reader.
func (p *Parser) ParseString(body string) (core.ExtractedPage, error) {
	return p.Parse(strings.NewReader(body))
}

type extractor struct {
	title       string
	headings    strings.Builder
	highlighted strings.Builder
	content     strings.Builder
	links       []string
}

func (e *extractor) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		e.visitElement(n)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c)
	}
}

func (e *extractor) visitElement(n *html.Node) {
	switch {
	case n.DataAtom == atom.Title:
		e.title = collectText(n)
	case n.DataAtom == atom.A:
		if href, ok := attr(n, "href"); ok && href != "" {
			e.links = append(e.links, href)
		}
	case headingAtoms[n.DataAtom]:
		writeField(&e.headings, collectText(n))
	case highlightAtoms[n.DataAtom] || classMatches(n, highlightClassMarkers):
		writeField(&e.highlighted, collectText(n))
	case contentAtoms[n.DataAtom] || classMatches(n, contentClassMarkers):
		writeField(&e.content, collectText(n))
	}
}

func writeField(b *strings.Builder, text string) {
	if text == "" {
		return
	}

	if b.Len() > 0 {
		b.WriteByte(' ')
	}

	b.WriteString(text)
}

// collectText returns all text in n's subtree, including the text of nested
// elements that their own selector group also collects (e.g. a heading
// inside a content div is counted for both headings and content), matching
// spec §4.4's "concatenation of matched-element text".
func collectText(n *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)

	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			writeField(&b, strings.TrimSpace(node.Data))
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)

	return b.String()
}

func classMatches(n *html.Node, markers []string) bool {
	class, ok := attr(n, "class")
	if !ok {
		return false
	}

	class = strings.ToLower(class)

	for _, marker := range markers {
		if strings.Contains(class, marker) {
			return true
		}
	}

	return false
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

// normalize whitespace-collapses and lowercases a field, per spec §3's
// "lowercase, whitespace-normalized" PageRecord fields.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
