package goquery

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sanpo"
	whatwg "github.com/nlnwa/whatwg-url/url"
)

// Ensure LinkExtractor implements sanpo.LinkExtractor at compile time.
var _ sanpo.LinkExtractor = (*LinkExtractor)(nil)

// absoluteHref matches hrefs that carry an authority: "scheme://" or "//".
var absoluteHref = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+\-.]*:)?//`)

// LinkExtractor extracts deduplicated anchors from HTML.
// It holds no mutable state and is safe for concurrent use.
type LinkExtractor struct {
	text *TextResolver
}

// LinkOption configures a LinkExtractor.
type LinkOption func(*LinkExtractor)

// WithIgnoredTags sets the elements whose content is excluded from anchor text.
// Defaults to sanpo.DefaultIgnoredTags().
func WithIgnoredTags(tags sanpo.TagSet) LinkOption {
	return func(e *LinkExtractor) {
		e.text = NewTextResolver(tags)
	}
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor(opts ...LinkOption) *LinkExtractor {
	e := &LinkExtractor{
		text: NewTextResolver(sanpo.DefaultIgnoredTags()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks parses HTML and returns its anchors as a link result.
//
// Anchors with an empty href or no visible text are dropped. When baseURL is
// non-empty, relative hrefs are resolved against it and anchors whose href
// cannot be parsed are dropped. Links are deduplicated by (href, text),
// keeping the first occurrence in document order.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) (*sanpo.LinkResult, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return sanpo.NewLinkResult(baseURL, e.links(doc.Selection, baseURL)), nil
}

func (e *LinkExtractor) links(root *goquery.Selection, baseURL string) []sanpo.Link {
	base := parseBase(baseURL)

	seen := make(map[string]struct{})
	links := []sanpo.Link{}

	root.FindMatcher(anchorSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = trimSpace(href)
		text := e.text.SelectionText(sel)
		if href == "" || text == "" {
			return
		}

		if baseURL != "" {
			resolved, ok := resolveHref(base, href)
			if !ok {
				return
			}
			href = resolved
		}

		link := sanpo.Link{Href: href, Text: text}
		if _, ok := seen[link.Key()]; ok {
			return
		}
		seen[link.Key()] = struct{}{}
		links = append(links, link)
	})

	return links
}

// parseBase returns the base URL for resolution, or nil when baseURL does
// not parse as an absolute URL. Relative hrefs cannot be resolved against a
// nil base.
func parseBase(baseURL string) *whatwg.Url {
	if baseURL == "" {
		return nil
	}
	base, err := whatwg.Parse(baseURL)
	if err != nil {
		return nil
	}
	return base
}

// resolveHref resolves a relative href against base using WHATWG URL
// parsing, the same rules a browser applies to an anchor. Absolute hrefs are
// returned verbatim once they parse. It reports false when the href cannot
// be resolved.
func resolveHref(base *whatwg.Url, href string) (string, bool) {
	var (
		u   *whatwg.Url
		err error
	)
	if base != nil {
		u, err = base.Parse(href)
	} else {
		u, err = whatwg.Parse(href)
	}
	if err != nil {
		return "", false
	}
	if !isRelative(href) {
		return href, true
	}
	if base == nil {
		return "", false
	}
	return u.Href(false), true
}

func isRelative(href string) bool {
	return !absoluteHref.MatchString(href)
}
