package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sanpo"
	"golang.org/x/net/html"
)

// TextResolver computes the human-visible text of a subtree.
type TextResolver struct {
	ignore sanpo.TagSet
}

// NewTextResolver returns a resolver that skips elements in ignore.
func NewTextResolver(ignore sanpo.TagSet) *TextResolver {
	return &TextResolver{ignore: ignore}
}

// Text returns the concatenated text of n's descendants in document order,
// skipping ignored element subtrees, with whitespace runs collapsed to a
// single space and the result trimmed.
func (r *TextResolver) Text(n *html.Node) string {
	var b strings.Builder
	r.walk(&b, n)
	return normalizeWhitespace(b.String())
}

// SelectionText returns the visible text of every node in sel.
func (r *TextResolver) SelectionText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		r.walk(&b, n)
	}
	return normalizeWhitespace(b.String())
}

func (r *TextResolver) walk(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if r.ignore.Contains(n.Data) {
			return
		}
	case html.DocumentNode:
	default:
		// Comments and doctypes carry no visible text.
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(b, c)
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace reports whether r is white space as browsers define it for
// String.prototype.trim and the \s regexp class. Unlike unicode.IsSpace it
// includes U+FEFF and excludes U+0085.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
