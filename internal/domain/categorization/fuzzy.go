package categorization

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion is a near-miss rule for a description that no keyword matched.
type Suggestion struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Score    int    `json:"score"` // Similarity score (higher = better match, max 100)
}

// Suggester ranks rule keywords by similarity to a description. It exists for
// the uncategorized case: "NETFLX 4921" matches no keyword exactly, but
// "netflix" is one edit away and worth surfacing to the reader.
type Suggester struct {
	entries []suggestEntry
	mu      sync.RWMutex
}

type suggestEntry struct {
	keyword  string // lowercased keyword for scoring
	category string
}

// NewSuggester creates a suggester from the given rule table.
func NewSuggester(rules []Rule) *Suggester {
	s := &Suggester{}
	s.Build(rules)
	return s
}

// Build replaces the suggester's rule table.
func (s *Suggester) Build(rules []Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	effective := dedupeKeepLast(rules)
	s.entries = make([]suggestEntry, 0, len(effective))
	for _, r := range effective {
		s.entries = append(s.entries, suggestEntry{keyword: r.Keyword, category: r.Category})
	}
}

// Suggest returns rules ranked by similarity to the description, best first.
// Zero-score entries are dropped; limit <= 0 means no limit.
func (s *Suggester) Suggest(description string, limit int) []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" {
		return nil
	}
	tokens := strings.Fields(normalized)

	results := make([]Suggestion, 0, len(s.entries))
	for _, e := range s.entries {
		// Score the whole description and each word of it; a keyword like
		// "netflix" should be found inside "NETFLX 4921" by its token.
		// Tokens under 3 chars skew the containment check and are skipped.
		score := fuzzyScore(normalized, e.keyword)
		for _, tok := range tokens {
			if len(tok) < 3 {
				continue
			}
			if tokScore := fuzzyScore(tok, e.keyword); tokScore > score {
				score = tokScore
			}
		}
		if score <= 0 {
			continue
		}
		results = append(results, Suggestion{
			Keyword:  e.keyword,
			Category: e.category,
			Score:    score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// Best returns the highest-scoring suggestion at or above threshold.
// Returns false if nothing reaches it.
func (s *Suggester) Best(description string, threshold int) (Suggestion, bool) {
	ranked := s.Suggest(description, 1)
	if len(ranked) == 0 || ranked[0].Score < threshold {
		return Suggestion{}, false
	}
	return ranked[0], true
}

// KeywordCount returns the number of keywords the suggester scores against.
func (s *Suggester) KeywordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// fuzzyScore calculates a similarity score between a description and a
// keyword (0-100) from containment, Levenshtein distance, and subsequence
// ranking, whichever scores best.
func fuzzyScore(description, keyword string) int {
	if description == keyword {
		return 100
	}

	// Containment is the common case for real descriptions: the keyword
	// appears inside a longer string. Score by length ratio.
	if strings.Contains(description, keyword) {
		return 75 + (25 * len(keyword) / len(description))
	}
	if strings.Contains(keyword, description) {
		return 75 + (25 * len(description) / len(keyword))
	}

	distance := levenshteinDistance(description, keyword)
	maxLen := len(description)
	if len(keyword) > maxLen {
		maxLen = len(keyword)
	}
	if maxLen == 0 {
		return 0
	}
	levenshteinScore := 100 * (maxLen - distance) / maxLen

	// Subsequence rank: lower rank = keyword letters appear earlier in order.
	rank := fuzzy.RankMatch(keyword, description)
	fuzzyLibScore := 0
	if rank >= 0 && rank < len(description) {
		fuzzyLibScore = 60 - (rank * 40 / len(description))
	}

	if levenshteinScore > fuzzyLibScore {
		return levenshteinScore
	}
	return fuzzyLibScore
}

// levenshteinDistance calculates the edit distance between two strings
// using two rows instead of the full matrix.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minOf3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func minOf3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
