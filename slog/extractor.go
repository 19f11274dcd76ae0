package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/sanpo"
)

// Ensure decorators implement the sanpo interfaces.
var (
	_ sanpo.LinkExtractor   = (*LoggingLinkExtractor)(nil)
	_ sanpo.ReportExtractor = (*LoggingReportExtractor)(nil)
)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   sanpo.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next sanpo.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs the link count.
func (e *LoggingLinkExtractor) ExtractLinks(html string, baseURL string) (result *sanpo.LinkResult, err error) {
	defer func(begin time.Time) {
		count := 0
		if result != nil {
			count = result.Meta.LinkCount
		}
		e.logger.Debug("extract links",
			"base_url", baseURL,
			"bytes", len(html),
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractLinks(html, baseURL)
}

// LoggingReportExtractor wraps a ReportExtractor with debug logging.
type LoggingReportExtractor struct {
	next   sanpo.ReportExtractor
	logger *slog.Logger
}

// NewLoggingReportExtractor creates a new LoggingReportExtractor.
func NewLoggingReportExtractor(next sanpo.ReportExtractor, logger *slog.Logger) *LoggingReportExtractor {
	return &LoggingReportExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the report size.
func (e *LoggingReportExtractor) Extract(html string) (report *sanpo.Report, err error) {
	defer func(begin time.Time) {
		var paragraphs, risks, costs, operators int
		if report != nil {
			paragraphs = len(report.Structure.Paragraphs)
			risks = len(report.Semantic.Risks)
			costs = len(report.Semantic.Costs)
			operators = len(report.Semantic.OperatorInfo)
		}
		e.logger.Debug("extract report",
			"bytes", len(html),
			"paragraphs", paragraphs,
			"risks", risks,
			"costs", costs,
			"operators", operators,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
