package categorization

import (
	"context"
	"log/slog"
	"sync"
)

// Rule table sources reported by RuleSource.
const (
	SourceDefaults = "defaults"
	SourceDatabase = "database"
)

// Service owns the active rule table and everything derived from it: the
// match engine, the fuzzy suggester, and the search index. It is fail-open
// throughout; categorization never breaks statement processing, it just
// falls back to the built-in table or to Uncategorized.
type Service struct {
	logger *slog.Logger
	repo   *Repository // nil when rule persistence is disabled

	engine    *Engine
	suggester *Suggester
	search    *SearchIndex // nil when index creation failed

	rules  []Rule // effective table currently loaded
	source string
	mu     sync.RWMutex
}

// NewService creates a categorization service loaded with the built-in rules.
// Call LoadRules afterwards to swap in a database table.
func NewService(logger *slog.Logger) *Service {
	s := &Service{logger: logger}

	search, err := NewSearchIndex()
	if err != nil {
		logger.Warn("rule search index unavailable", slog.Any("error", err))
	} else {
		s.search = search
	}

	s.rebuild(DefaultRules(), SourceDefaults)
	return s
}

// WithRepository attaches a rule repository for LoadRules to read from.
func (s *Service) WithRepository(repo *Repository) *Service {
	s.repo = repo
	return s
}

// LoadRules refreshes the rule table from the repository. An empty table is
// seeded with the defaults first. Any failure leaves the current table in
// place; the service keeps working on built-in rules.
func (s *Service) LoadRules(ctx context.Context) {
	if s.repo == nil {
		return
	}

	count, err := s.repo.CountRules(ctx)
	if err != nil {
		s.logger.Warn("failed to count rules, keeping current table", slog.Any("error", err))
		return
	}

	if count == 0 {
		if err := s.repo.SeedRules(ctx, DefaultRules()); err != nil {
			s.logger.Warn("failed to seed default rules, keeping current table", slog.Any("error", err))
			return
		}
		s.logger.Info("seeded default rule table", slog.Int("rules", len(DefaultRules())))
	}

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		s.logger.Warn("failed to load rules, keeping current table", slog.Any("error", err))
		return
	}
	if len(rules) == 0 {
		s.logger.Warn("rule table empty after load, keeping current table")
		return
	}

	s.rebuild(rules, SourceDatabase)
	s.logger.Info("rule table loaded",
		slog.String("source", SourceDatabase),
		slog.Int("rules", s.RuleCount()),
	)
}

// rebuild swaps in a new rule table and rebuilds everything derived from it.
func (s *Service) rebuild(rules []Rule, source string) {
	engine := NewEngine(rules)
	suggester := NewSuggester(rules)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine = engine
	s.suggester = suggester
	s.rules = engine.Rules()
	s.source = source

	if s.search != nil {
		if err := s.search.IndexRules(rules); err != nil {
			s.logger.Warn("failed to index rules for search", slog.Any("error", err))
		}
	}
}

// Categorize returns the category for a description, or Uncategorized when
// no keyword matches.
func (s *Service) Categorize(description string) string {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()

	if m, ok := engine.Match(description); ok {
		return m.Category
	}
	return Uncategorized
}

// CategorizeBatch categorizes many descriptions at once. The result slice is
// parallel to descriptions.
func (s *Service) CategorizeBatch(descriptions []string) []string {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()

	matches := engine.MatchBatch(descriptions)
	out := make([]string, len(descriptions))
	for i, m := range matches {
		if m != nil {
			out[i] = m.Category
		} else {
			out[i] = Uncategorized
		}
	}
	return out
}

// Rules returns a copy of the effective rule table, in match order.
func (s *Service) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// RuleCount returns the size of the effective table.
func (s *Service) RuleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// RuleSource reports where the active table came from.
func (s *Service) RuleSource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Suggest returns rules ranked by similarity to the description.
func (s *Service) Suggest(description string, limit int) []Suggestion {
	s.mu.RLock()
	suggester := s.suggester
	s.mu.RUnlock()

	return suggester.Suggest(description, limit)
}

// BestSuggestion returns the top suggestion at or above threshold.
func (s *Service) BestSuggestion(description string, threshold int) (Suggestion, bool) {
	s.mu.RLock()
	suggester := s.suggester
	s.mu.RUnlock()

	return suggester.Best(description, threshold)
}

// SearchRules runs a full-text query over the rule table. When the search
// index is unavailable it degrades to fuzzy suggestions.
func (s *Service) SearchRules(query string, limit int) ([]RuleHit, error) {
	s.mu.RLock()
	search := s.search
	s.mu.RUnlock()

	if search == nil {
		hits := make([]RuleHit, 0)
		for _, sug := range s.Suggest(query, limit) {
			hits = append(hits, RuleHit{
				Keyword:  sug.Keyword,
				Category: sug.Category,
				Score:    float64(sug.Score) / 100,
			})
		}
		return hits, nil
	}

	return search.Search(query, limit)
}

// Close releases the search index.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.search != nil {
		err := s.search.Close()
		s.search = nil
		return err
	}
	return nil
}
