// Package goquery implements HTML extraction for sanpo on top of
// github.com/PuerkitoBio/goquery. It provides the visible-text resolver,
// the link extractor and the transparency report extractor.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/sanpo"
)

// Compiled once; cascadia selectors are immutable and safe for concurrent use.
var (
	anchorSelector       = cascadia.MustCompile("a")
	titleSelector        = cascadia.MustCompile("title")
	h1Selector           = cascadia.MustCompile("h1")
	h2Selector           = cascadia.MustCompile("h2")
	paragraphSelector    = cascadia.MustCompile("p")
	timeSelector         = cascadia.MustCompile("time")
	modifiedTimeSelector = cascadia.MustCompile(`meta[property="article:modified_time"]`)
)

// parseDocument parses raw HTML into a traversable document.
func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sanpo.Errorf(sanpo.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// trimmedTexts returns the trimmed text content of every selected element.
// Empty strings are kept so the result lines up with the selection.
func trimmedTexts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, trimSpace(s.Text()))
	})
	return out
}
