// Package extract wires a Fetcher and a LinkExtractor into the
// fetch-and-extract pipeline.
package extract

import (
	"context"

	"github.com/fwojciec/sanpo"
)

// Ensure Pipeline implements sanpo.LinkService at compile time.
var _ sanpo.LinkService = (*Pipeline)(nil)

// Pipeline fetches documents and extracts their links.
type Pipeline struct {
	Fetcher sanpo.Fetcher
	Links   sanpo.LinkExtractor
}

// ExtractFromURL fetches url and extracts its links, resolving relative
// hrefs against url. Fetch errors are returned unchanged.
func (p *Pipeline) ExtractFromURL(ctx context.Context, url string) (*sanpo.LinkResult, error) {
	if p.Fetcher == nil {
		return nil, sanpo.Errorf(sanpo.ENOTIMPLEMENTED, "no fetcher configured")
	}
	html, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.ExtractFromHTML(html, url)
}

// ExtractFromHTML extracts links from html. baseURL may be empty, in which
// case hrefs are kept as written.
func (p *Pipeline) ExtractFromHTML(html string, baseURL string) (*sanpo.LinkResult, error) {
	return p.Links.ExtractLinks(html, baseURL)
}
