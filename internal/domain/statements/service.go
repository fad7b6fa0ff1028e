// Package statements orchestrates the upload pipeline: extraction,
// insights, chart rendering. Every stage degrades gracefully; Process
// reports problems through status messages, never through an error.
package statements

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/FACorreiaa/statement-insights/internal/domain/charts"
	"github.com/FACorreiaa/statement-insights/internal/domain/extract"
	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/pkg/metrics"
	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

// Outcome messages surfaced on the results page and in API responses.
const (
	MsgProcessed      = "Successfully processed statement files."
	MsgNoData         = "Processing completed, but no data was extracted from the files."
	MsgNoAmountColumn = "Could not find an amount column in the extracted data."
	MsgInsightsFailed = "Insights could not be computed from the extracted data."

	msgCategoryChartFailed = "The spending-by-category chart could not be rendered."
	msgTrendChartFailed    = "The monthly trend chart could not be rendered."

	maxSuggestions = 5
)

// Result carries everything a response needs. Report is nil when insights
// could not be computed; the extraction summary always renders.
type Result struct {
	Summary          extract.Summary           `json:"summary"`
	Columns          []string                  `json:"columns,omitempty"`
	Report           *insights.Report          `json:"report,omitempty"`
	Suggestions      []insights.SuggestionHint `json:"suggestions,omitempty"`
	CategoryChartB64 string                    `json:"category_chart,omitempty"`
	TrendChartB64    string                    `json:"trend_chart,omitempty"`
	Outcome          string                    `json:"outcome"`
	Messages         []string                  `json:"messages"`
}

// HasReport reports whether insights were computed.
func (r *Result) HasReport() bool {
	return r.Report != nil
}

// Service runs the statement pipeline.
type Service struct {
	extractor *extract.Extractor
	insights  *insights.Service
	renderer  *charts.Renderer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService wires the pipeline stages together.
func NewService(extractor *extract.Extractor, insightsSvc *insights.Service, renderer *charts.Renderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: extractor,
		insights:  insightsSvc,
		renderer:  renderer,
		logger:    logger,
	}
}

// WithMetrics attaches prometheus instrumentation.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Process runs extraction, insights and charts over a spooled batch. Each
// stage that fails appends a message and the pipeline carries on with what
// it has.
func (s *Service) Process(ctx context.Context, files []spool.File) *Result {
	result := &Result{}

	tables, summary := s.extractor.ExtractAll(ctx, files)
	result.Summary = summary

	records, warnings := extract.Normalize(tables)
	result.Messages = append(result.Messages, warnings...)
	result.Columns = normalizedColumns(tables)

	s.metrics.BatchProcessed(len(summary.Extracted), len(summary.Skipped), summary.RowsExtracted())

	if len(records) == 0 {
		result.Outcome = MsgNoData
		result.Messages = append(result.Messages, MsgNoData)
		s.logger.Info("statement batch produced no data",
			"files_received", summary.FilesReceived,
			"files_skipped", len(summary.Skipped))
		return result
	}

	report, err := s.insights.BuildReport(records)
	if err != nil {
		if errors.Is(err, insights.ErrAmountColumnMissing) {
			result.Outcome = MsgNoAmountColumn
		} else {
			result.Outcome = MsgInsightsFailed
		}
		result.Messages = append(result.Messages, result.Outcome)
		return result
	}

	result.Report = report
	result.Suggestions = s.insights.Suggestions(report, maxSuggestions)
	result.Outcome = MsgProcessed
	result.Messages = append(result.Messages, MsgProcessed)
	s.metrics.ReportBuilt()

	s.renderCharts(result, report)

	s.logger.Info("statement batch processed",
		"files_extracted", len(summary.Extracted),
		"files_skipped", len(summary.Skipped),
		"rows", summary.RowsExtracted(),
		"transactions", report.Stats.TransactionsCount)
	return result
}

// renderCharts draws both charts independently. A failed or empty chart
// never blocks the insights display.
func (s *Service) renderCharts(result *Result, report *insights.Report) {
	if png, err := s.renderer.CategoryBar(report.Stats.SpendingByCategory); err != nil {
		s.logger.Warn("category chart render failed", "error", err)
		s.metrics.ChartFailed()
		result.Messages = append(result.Messages, msgCategoryChartFailed)
	} else if png != nil {
		result.CategoryChartB64 = base64.StdEncoding.EncodeToString(png)
	}

	if png, err := s.renderer.MonthlyTrend(report.Transactions); err != nil {
		s.logger.Warn("trend chart render failed", "error", err)
		s.metrics.ChartFailed()
		result.Messages = append(result.Messages, msgTrendChartFailed)
	} else if png != nil {
		result.TrendChartB64 = base64.StdEncoding.EncodeToString(png)
	}
}

// normalizedColumns reports the column names of the combined frame: the
// three-column convention when any table was convertible, otherwise the
// first table's own headers.
func normalizedColumns(tables []extract.Table) []string {
	if len(tables) == 0 {
		return nil
	}
	for _, t := range tables {
		if len(t.Headers) >= 3 {
			return []string{"Date", "Description", "Amount"}
		}
	}
	return tables[0].Headers
}
