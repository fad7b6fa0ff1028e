package insights

import (
	"log/slog"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
)

// suggestionThreshold is the minimum fuzzy score for an uncategorized
// description to earn a rule hint.
const suggestionThreshold = 60

// SuggestionHint pairs an uncategorized description with the rule that
// nearly matched it.
type SuggestionHint struct {
	Description string `json:"description"`
	Keyword     string `json:"keyword"`
	Category    string `json:"category"`
	Score       int    `json:"score"`
}

// Service wraps the generator with logging and near-miss suggestions.
type Service struct {
	generator *Generator
	catSvc    *categorization.Service
	logger    *slog.Logger
}

// NewService creates an insights service using the categorization service's
// active rule table.
func NewService(catSvc *categorization.Service, logger *slog.Logger) *Service {
	return &Service{
		generator: NewGenerator(catSvc.Rules()),
		catSvc:    catSvc,
		logger:    logger,
	}
}

// Generator exposes the underlying generator.
func (s *Service) Generator() *Generator {
	return s.generator
}

// BuildReport generates a report and logs the outcome.
func (s *Service) BuildReport(records []RawRecord) (*Report, error) {
	report, err := s.generator.Generate(records)
	if err != nil {
		s.logger.Warn("report generation failed",
			slog.Int("records", len(records)),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.Info("report generated",
		slog.Int("transactions", report.Stats.TransactionsCount),
		slog.Int("categorized", report.Stats.CategorizedCount),
		slog.Int("uncategorized", report.Stats.UncategorizedCount),
		slog.String("net_flow", report.Stats.NetFlow.String()),
	)
	return report, nil
}

// Suggestions proposes rules for the report's uncategorized descriptions.
// Each distinct description appears at most once, in first-seen order, and
// only when a rule scores at or above suggestionThreshold.
func (s *Service) Suggestions(report *Report, limit int) []SuggestionHint {
	if report == nil || s.catSvc == nil {
		return nil
	}

	var hints []SuggestionHint
	seen := make(map[string]bool)

	for _, tx := range report.Transactions {
		if tx.Category != categorization.Uncategorized {
			continue
		}
		if tx.Description == "" || seen[tx.Description] {
			continue
		}
		seen[tx.Description] = true

		best, ok := s.catSvc.BestSuggestion(tx.Description, suggestionThreshold)
		if !ok {
			continue
		}
		hints = append(hints, SuggestionHint{
			Description: tx.Description,
			Keyword:     best.Keyword,
			Category:    best.Category,
			Score:       best.Score,
		})

		if limit > 0 && len(hints) >= limit {
			break
		}
	}
	return hints
}
