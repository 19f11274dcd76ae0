package sanpo

import "context"

// Fetcher retrieves raw HTML text from URLs.
type Fetcher interface {
	// Fetch retrieves the document at url and returns its body decoded as text.
	// A non-success status is reported as *FetchError. Transport failures
	// (DNS, connection refused, cancellation) are returned unchanged.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
