package sanpo

import "context"

// Link is a hyperlink extracted from a document.
// Href is absolute when it could be resolved against the base URL,
// otherwise it is the original attribute value.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Key returns the deduplication key for the link. Two links are duplicates
// iff both href and text match exactly.
func (l Link) Key() string {
	return l.Href + "||" + l.Text
}

// LinkMeta describes a link extraction run.
type LinkMeta struct {
	BaseURL   string `json:"baseUrl"`
	LinkCount int    `json:"linkCount"`
}

// LinkResult is the outcome of extracting links from one document.
type LinkResult struct {
	OK    bool     `json:"ok"`
	Meta  LinkMeta `json:"meta"`
	Links []Link   `json:"links"`
}

// NewLinkResult wraps links in a successful result. LinkCount always equals
// len(links) and a nil slice is normalized to an empty one.
func NewLinkResult(baseURL string, links []Link) *LinkResult {
	if links == nil {
		links = []Link{}
	}
	return &LinkResult{
		OK: true,
		Meta: LinkMeta{
			BaseURL:   baseURL,
			LinkCount: len(links),
		},
		Links: links,
	}
}

// LinkExtractor extracts deduplicated hyperlinks from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns its anchors in document order.
	// The baseURL is used to resolve relative hrefs; it may be empty.
	// Malformed anchors are dropped rather than reported as errors.
	ExtractLinks(html string, baseURL string) (*LinkResult, error)
}

// LinkService runs the fetch-and-extract pipeline for links.
type LinkService interface {
	// ExtractFromURL fetches url and extracts its links, using url as the base.
	// Fetch failures propagate unchanged.
	ExtractFromURL(ctx context.Context, url string) (*LinkResult, error)

	// ExtractFromHTML extracts links from html. baseURL may be empty.
	ExtractFromHTML(html string, baseURL string) (*LinkResult, error)
}
