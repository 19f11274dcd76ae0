package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sanpo"
)

// Ensure ReportExtractor implements sanpo.ReportExtractor at compile time.
var _ sanpo.ReportExtractor = (*ReportExtractor)(nil)

// ReportExtractor builds transparency reports from HTML.
// It holds no mutable state and is safe for concurrent use.
type ReportExtractor struct {
	keywords sanpo.Keywords
}

// ReportOption configures a ReportExtractor.
type ReportOption func(*ReportExtractor)

// WithKeywords sets the keyword sets used to classify paragraphs.
// Defaults to sanpo.DefaultKeywords().
func WithKeywords(k sanpo.Keywords) ReportOption {
	return func(e *ReportExtractor) {
		e.keywords = k
	}
}

// NewReportExtractor creates a new ReportExtractor.
func NewReportExtractor(opts ...ReportOption) *ReportExtractor {
	e := &ReportExtractor{
		keywords: sanpo.DefaultKeywords(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses HTML and returns its transparency report.
//
// Headings and paragraphs use the raw trimmed text content of each element,
// in document order and without deduplication. Empty paragraphs are kept.
func (e *ReportExtractor) Extract(html string) (*sanpo.Report, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	paragraphs := trimmedTexts(doc.FindMatcher(paragraphSelector))
	semantic := e.keywords.Classify(paragraphs)

	report := &sanpo.Report{
		Meta: sanpo.ReportMeta{
			Title:     title(doc.Selection),
			UpdatedAt: updatedAt(doc.Selection),
		},
		Structure: sanpo.Structure{
			H1:         trimmedTexts(doc.FindMatcher(h1Selector)),
			H2:         trimmedTexts(doc.FindMatcher(h2Selector)),
			Paragraphs: paragraphs,
		},
		Semantic: semantic,
	}
	if len(semantic.OperatorInfo) > 0 {
		name := semantic.OperatorInfo[0]
		report.Meta.OperatorName = &name
	}
	return report, nil
}

func title(root *goquery.Selection) *string {
	sel := root.FindMatcher(titleSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	return nonEmpty(trimSpace(sel.Text()))
}

// updatedAt prefers the first <time> element's datetime over the
// article:modified_time meta tag. Values are returned verbatim.
func updatedAt(root *goquery.Selection) *string {
	if v, ok := root.FindMatcher(timeSelector).First().Attr("datetime"); ok && v != "" {
		return &v
	}
	if v, ok := root.FindMatcher(modifiedTimeSelector).First().Attr("content"); ok && v != "" {
		return &v
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
