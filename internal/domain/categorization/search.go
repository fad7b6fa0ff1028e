package categorization

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// RuleDocument is the indexed form of a rule.
type RuleDocument struct {
	ID       string  `json:"id"`
	Keyword  string  `json:"keyword"`  // Exact keyword (for term matching)
	Category string  `json:"category"` // Category name, searchable
	Text     string  `json:"text"`     // Keyword and category together for free text search
	Position float64 `json:"position"` // Position in the effective table
}

// RuleHit is a search result with its relevance score.
type RuleHit struct {
	Keyword  string  `json:"keyword"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// SearchIndex provides full-text search over the rule table using Bleve.
// The table is small and rebuilt on load, so the index lives in memory.
type SearchIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewSearchIndex creates an empty in-memory rule index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

// buildIndexMapping creates the Bleve index mapping for rule documents
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	numericFieldMapping := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("keyword", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("position", numericFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// IndexRules replaces the index contents with the given rule table.
func (si *SearchIndex) IndexRules(rules []Rule) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	effective := dedupeKeepLast(rules)

	// Drop documents from a previous table before re-indexing.
	if err := si.clearLocked(); err != nil {
		return err
	}

	batch := si.index.NewBatch()
	for i, rule := range effective {
		doc := RuleDocument{
			ID:       fmt.Sprintf("rule_%04d", i),
			Keyword:  rule.Keyword,
			Category: rule.Category,
			Text:     fmt.Sprintf("%s %s", rule.Keyword, rule.Category),
			Position: float64(i),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index rule %q: %w", rule.Keyword, err)
		}
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Search performs a full-text search over keywords and categories.
// The match query tolerates one edit of typo distance.
func (si *SearchIndex) Search(query string, limit int) ([]RuleHit, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return convertHits(searchResults), nil
}

// convertHits converts Bleve search results to RuleHits
func convertHits(searchResults *bleve.SearchResult) []RuleHit {
	hits := make([]RuleHit, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		rh := RuleHit{Score: hit.Score}
		if kw, ok := hit.Fields["keyword"].(string); ok {
			rh.Keyword = kw
		}
		if cat, ok := hit.Fields["category"].(string); ok {
			rh.Category = cat
		}
		hits = append(hits, rh)
	}
	return hits
}

func (si *SearchIndex) clearLocked() error {
	query := bleve.NewMatchAllQuery()
	searchRequest := bleve.NewSearchRequest(query)
	searchRequest.Size = 10000

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	batch := si.index.NewBatch()
	for _, hit := range searchResults.Hits {
		batch.Delete(hit.ID)
	}
	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// DocumentCount returns the number of rules in the index.
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.index.DocCount()
}

// Close closes the index.
func (si *SearchIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
