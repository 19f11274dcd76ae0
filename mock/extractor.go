package mock

import "github.com/fwojciec/sanpo"

var _ sanpo.ReportExtractor = (*ReportExtractor)(nil)

// ReportExtractor is a mock implementation of sanpo.ReportExtractor.
type ReportExtractor struct {
	ExtractFn func(html string) (*sanpo.Report, error)
}

func (e *ReportExtractor) Extract(html string) (*sanpo.Report, error) {
	return e.ExtractFn(html)
}
