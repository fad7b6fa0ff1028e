package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Match is a single categorization decision with the rule that produced it.
type Match struct {
	Keyword  string // The keyword that matched
	Category string // The category it assigns
	Index    int    // Position in the effective rule table
}

// Engine matches rule keywords against transaction descriptions using the
// Aho-Corasick algorithm: one pass through the text finds every keyword at
// once, independent of how many rules are loaded.
//
// When several keywords appear in a description, the rule furthest down the
// table wins. The matcher returns dictionary indices, so the winner is simply
// the largest index. Duplicate keywords are collapsed to their last occurrence
// before the automaton is built, which keeps that selection exact.
type Engine struct {
	matcher *ahocorasick.Matcher
	rules   []Rule       // effective table: lowercased, deduplicated, original order
	mu      sync.RWMutex // protects rebuilding the matcher
}

// NewEngine creates an engine from the given rule table.
// A nil or empty table produces an engine that never matches.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// Build constructs the Aho-Corasick automaton from the rule table.
// It can be called again to swap in a new table.
func (e *Engine) Build(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	effective := dedupeKeepLast(rules)
	if len(effective) == 0 {
		e.matcher = nil
		e.rules = nil
		return
	}

	keywords := make([]string, len(effective))
	for i, r := range effective {
		keywords[i] = r.Keyword
	}

	e.rules = effective
	e.matcher = ahocorasick.NewStringMatcher(keywords)
}

// Match finds the winning rule for a description.
// Returns false when no keyword occurs in the description.
func (e *Engine) Match(description string) (Match, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.match(description)
}

// MatchBatch categorizes many descriptions under a single read lock.
// The result slice is parallel to descriptions; entries are nil where no
// keyword matched.
func (e *Engine) MatchBatch(descriptions []string) []*Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]*Match, len(descriptions))
	for i, desc := range descriptions {
		if m, ok := e.match(desc); ok {
			matchCopy := m
			results[i] = &matchCopy
		}
	}
	return results
}

func (e *Engine) match(description string) (Match, bool) {
	if e.matcher == nil || len(e.rules) == 0 {
		return Match{}, false
	}

	normalized := strings.ToLower(description)
	hits := e.matcher.MatchThreadSafe([]byte(normalized))
	if len(hits) == 0 {
		return Match{}, false
	}

	best := -1
	for _, idx := range hits {
		if idx > best && idx < len(e.rules) {
			best = idx
		}
	}
	if best < 0 {
		return Match{}, false
	}

	rule := e.rules[best]
	return Match{Keyword: rule.Keyword, Category: rule.Category, Index: best}, true
}

// Rules returns a copy of the effective rule table.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// RuleCount returns the number of rules in the effective table.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// IsEmpty returns true if the engine has no rules loaded.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher == nil || len(e.rules) == 0
}
