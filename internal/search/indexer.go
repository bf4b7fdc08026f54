/*
Package search implements keyword search over the book catalog.

It provides BM25 search via a Bleve index over title, description,
categories and authors, plus a hybrid mode that fuses keyword relevance
with content similarity to a seed book.
*/
package search

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/khaile/bookwise/internal/catalog"
)

// Indexer manages the catalog search index.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	indexPath  string
}

// NewIndexer creates an in-memory catalog index (fast startup, rebuilt on
// demand from the catalog tables).
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Indexer{bleveIndex: index}, nil
}

// NewIndexerWithPath creates or opens a persistent catalog index on disk.
func NewIndexerWithPath(indexPath string) (*Indexer, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.NewUsing(indexPath, buildIndexMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open/create index: %w", err)
		}
	}

	return &Indexer{bleveIndex: index, indexPath: indexPath}, nil
}

// buildIndexMapping creates the Bleve mapping for book documents.
func buildIndexMapping() mapping.IndexMapping {
	bookMapping := bleve.NewDocumentMapping()

	titleMapping := bleve.NewTextFieldMapping()
	bookMapping.AddFieldMappingsAt("title", titleMapping)

	descMapping := bleve.NewTextFieldMapping()
	bookMapping.AddFieldMappingsAt("description", descMapping)

	categoryMapping := bleve.NewTextFieldMapping()
	bookMapping.AddFieldMappingsAt("categories", categoryMapping)

	authorMapping := bleve.NewTextFieldMapping()
	bookMapping.AddFieldMappingsAt("authors", authorMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", bookMapping)

	return indexMapping
}

// IndexBooks adds or replaces catalog books in the index as one batch.
func (i *Indexer) IndexBooks(books []*catalog.Book) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, book := range books {
		doc := map[string]interface{}{
			"title":       book.Title,
			"description": book.Description,
			"categories":  strings.Join(book.Categories, " "),
			"authors":     strings.Join(book.Authors, " "),
		}

		docID := strconv.FormatInt(book.ID, 10)
		if err := batch.Index(docID, doc); err != nil {
			log.Printf("Warning: failed to index book %d: %v", book.ID, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index books: %w", err)
	}
	return nil
}

// RemoveBook deletes one book from the index.
func (i *Indexer) RemoveBook(bookID int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.bleveIndex.Delete(strconv.FormatInt(bookID, 10)); err != nil {
		return fmt.Errorf("failed to remove book %d from index: %w", bookID, err)
	}
	return nil
}

// DocCount returns the number of indexed books.
func (i *Indexer) DocCount() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.bleveIndex.DocCount()
}

// Close releases the underlying index.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleveIndex.Close()
}
