package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggester_Suggest(t *testing.T) {
	s := NewSuggester(DefaultRules())

	t.Run("typo still finds the keyword", func(t *testing.T) {
		ranked := s.Suggest("NETFLX 4921", 3)
		require.NotEmpty(t, ranked)
		assert.Equal(t, "netflix", ranked[0].Keyword)
		assert.Equal(t, CategoryExpenses, ranked[0].Category)
		assert.GreaterOrEqual(t, ranked[0].Score, 40)
	})

	t.Run("exact keyword scores 100", func(t *testing.T) {
		ranked := s.Suggest("gym", 1)
		require.NotEmpty(t, ranked)
		assert.Equal(t, "gym", ranked[0].Keyword)
		assert.Equal(t, 100, ranked[0].Score)
	})

	t.Run("containment scores high", func(t *testing.T) {
		ranked := s.Suggest("coffee shop", 1)
		require.NotEmpty(t, ranked)
		assert.Equal(t, "coffee", ranked[0].Keyword)
		assert.GreaterOrEqual(t, ranked[0].Score, 75)
	})

	t.Run("results sorted by score", func(t *testing.T) {
		ranked := s.Suggest("interest rate adjustment", 10)
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		ranked := s.Suggest("payment", 2)
		assert.LessOrEqual(t, len(ranked), 2)
	})

	t.Run("blank description", func(t *testing.T) {
		assert.Nil(t, s.Suggest("", 5))
		assert.Nil(t, s.Suggest("   ", 5))
	})
}

func TestSuggester_Best(t *testing.T) {
	s := NewSuggester(DefaultRules())

	t.Run("above threshold", func(t *testing.T) {
		best, ok := s.Best("coffee shop downtown", 60)
		require.True(t, ok)
		assert.Equal(t, "coffee", best.Keyword)
	})

	t.Run("below threshold", func(t *testing.T) {
		_, ok := s.Best("zzzz qqqq", 60)
		assert.False(t, ok)
	})
}

func TestSuggester_Empty(t *testing.T) {
	s := NewSuggester(nil)
	assert.Equal(t, 0, s.KeywordCount())
	assert.Nil(t, s.Suggest("salary", 5))
}

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name        string
		description string
		keyword     string
		expected    int
	}{
		{"exact", "netflix", "netflix", 100},
		{"keyword inside description", "coffee shop", "coffee", 75 + 25*6/11},
		{"description inside keyword", "super", "supermarket", 75 + 25*5/11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fuzzyScore(tt.description, tt.keyword))
		})
	}

	t.Run("unrelated strings score low", func(t *testing.T) {
		assert.Less(t, fuzzyScore("qqqq", "salary"), 30)
	})
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2   string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"netflx", "netflix", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levenshteinDistance(tt.s1, tt.s2), "%s vs %s", tt.s1, tt.s2)
	}
}
