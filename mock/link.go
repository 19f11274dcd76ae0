package mock

import (
	"context"

	"github.com/fwojciec/sanpo"
)

var (
	_ sanpo.LinkExtractor = (*LinkExtractor)(nil)
	_ sanpo.LinkService   = (*LinkService)(nil)
)

// LinkExtractor is a mock implementation of sanpo.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) (*sanpo.LinkResult, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) (*sanpo.LinkResult, error) {
	return e.ExtractLinksFn(html, baseURL)
}

// LinkService is a mock implementation of sanpo.LinkService.
type LinkService struct {
	ExtractFromURLFn  func(ctx context.Context, url string) (*sanpo.LinkResult, error)
	ExtractFromHTMLFn func(html string, baseURL string) (*sanpo.LinkResult, error)
}

func (s *LinkService) ExtractFromURL(ctx context.Context, url string) (*sanpo.LinkResult, error) {
	return s.ExtractFromURLFn(ctx, url)
}

func (s *LinkService) ExtractFromHTML(html string, baseURL string) (*sanpo.LinkResult, error) {
	return s.ExtractFromHTMLFn(html, baseURL)
}
