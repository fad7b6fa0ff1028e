package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIndex_IndexAndSearch(t *testing.T) {
	index, err := NewSearchIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.IndexRules(DefaultRules()))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(30), count)

	t.Run("finds keyword", func(t *testing.T) {
		hits, err := index.Search("netflix", 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "netflix", hits[0].Keyword)
		assert.Equal(t, CategoryExpenses, hits[0].Category)
		assert.Greater(t, hits[0].Score, 0.0)
	})

	t.Run("finds by category name", func(t *testing.T) {
		hits, err := index.Search("Income", 50)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		for _, h := range hits {
			assert.Equal(t, CategoryIncome, h.Category)
		}
	})

	t.Run("tolerates one typo", func(t *testing.T) {
		hits, err := index.Search("netflik", 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "netflix", hits[0].Keyword)
	})

	t.Run("respects limit", func(t *testing.T) {
		hits, err := index.Search("Expenses", 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(hits), 3)
	})

	t.Run("no hits for unknown term", func(t *testing.T) {
		hits, err := index.Search("zzzzzzzz", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearchIndex_Reindex(t *testing.T) {
	index, err := NewSearchIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.IndexRules(DefaultRules()))

	// A smaller table replaces the old one completely.
	require.NoError(t, index.IndexRules([]Rule{
		{Keyword: "lunch", Category: CategoryExpenses},
	}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	hits, err := index.Search("netflix", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchIndex_DuplicatesCollapsed(t *testing.T) {
	index, err := NewSearchIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.IndexRules([]Rule{
		{Keyword: "coffee", Category: CategoryExpenses},
		{Keyword: "coffee", Category: CategoryIncome},
	}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	hits, err := index.Search("coffee", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, CategoryIncome, hits[0].Category)
}
