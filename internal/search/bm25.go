package search

import (
	"fmt"
	"log"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchBM25 performs BM25 keyword search over the catalog.
func (i *Indexer) SearchBM25(queryText string, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchRequest := bleve.NewSearchRequestOptions(i.buildMatchQuery(queryText), limit, 0, false)

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// SearchByCategory performs BM25 search restricted to one category.
func (i *Indexer) SearchByCategory(queryText, category string, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := i.buildMatchQuery(queryText)
	categoryQuery := bleve.NewMatchQuery(category)
	categoryQuery.SetField("categories")

	conjunction := bleve.NewConjunctionQuery(matchQuery, categoryQuery)
	searchRequest := bleve.NewSearchRequestOptions(conjunction, limit, 0, false)

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// buildMatchQuery builds a disjunction of per-field match queries so a hit
// in any of title, description, categories or authors counts.
func (i *Indexer) buildMatchQuery(queryText string) query.Query {
	fields := []string{"title", "description", "categories", "authors"}

	queries := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		matchQuery := bleve.NewMatchQuery(queryText)
		matchQuery.SetField(field)
		queries = append(queries, matchQuery)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

// convertBleveResults converts Bleve hits into catalog results.
func convertBleveResults(results *bleve.SearchResult) []Result {
	converted := make([]Result, 0, len(results.Hits))

	for _, hit := range results.Hits {
		bookID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			log.Printf("Warning: skipping hit with malformed id %q: %v", hit.ID, err)
			continue
		}
		converted = append(converted, Result{BookID: bookID, Score: hit.Score})
	}

	return converted
}
