/*
Package feature converts catalog entities into sparse weighted feature
vectors.

Extraction produces four named feature lists per book (categories, authors,
keywords, description terms); building turns those lists into per-aspect
sparse vectors plus a fixed aspect weighting used for overall similarity.

Description terms are filtered against Bleve's English stop word list,
extended with domain noise words that carry no signal in a book catalog
("book", "novel", "chapter", ...).
*/
package feature

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"

	"github.com/khaile/bookwise/internal/catalog"
)

// maxDescriptionTerms caps how many significant terms are taken from a
// book description.
const maxDescriptionTerms = 50

// minTermLength is the minimum token length for a description term.
const minTermLength = 3

// domainNoiseWords are catalog-specific words that appear in almost every
// description and would otherwise dominate the description sub-vector.
var domainNoiseWords = []string{
	"book", "books", "novel", "novels", "story", "stories",
	"author", "reader", "readers", "chapter", "chapters",
	"page", "pages", "series", "edition", "bestseller", "bestselling",
}

// Features holds the four normalized feature lists extracted from a book.
type Features struct {
	Categories []string
	Authors    []string
	Keywords   []string
	Terms      []string
}

// Extractor turns books into feature lists.
//
// The stop word set is loaded once at construction and treated as immutable
// afterwards, so a single Extractor is safe for concurrent use.
type Extractor struct {
	stopWords analysis.TokenMap
}

// NewExtractor creates an extractor with the English stop word set extended
// by domain noise words.
func NewExtractor() (*Extractor, error) {
	stopWords := analysis.NewTokenMap()
	if err := stopWords.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("failed to load stop words: %w", err)
	}

	for _, word := range domainNoiseWords {
		stopWords.AddToken(word)
	}

	return &Extractor{stopWords: stopWords}, nil
}

// Extract returns the four feature lists for a book.
//
// Extraction is a pure function of the book's current state and never
// fails: missing or unparseable text yields empty lists.
func (e *Extractor) Extract(book *catalog.Book) Features {
	if book == nil {
		return Features{}
	}

	return Features{
		Categories: normalizeAll(book.Categories),
		Authors:    normalizeAll(book.Authors),
		Keywords:   splitKeywords(book.Keywords),
		Terms:      e.descriptionTerms(book.Description),
	}
}

// descriptionTerms tokenizes a free-text description into significant terms:
// alphabetic tokens, longer than two characters, not in the stop word set,
// capped at maxDescriptionTerms. Duplicates are kept so term frequency can
// be derived by the vector builder.
func (e *Extractor) descriptionTerms(description string) []string {
	if description == "" {
		return nil
	}

	tokens := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) < minTermLength {
			continue
		}
		if e.stopWords[token] {
			continue
		}
		terms = append(terms, token)
		if len(terms) >= maxDescriptionTerms {
			break
		}
	}

	return terms
}

// normalize lower-cases and trims a feature name.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeAll normalizes a list of feature names, dropping empties.
func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := normalize(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// splitKeywords splits a comma-separated keyword field into normalized
// keyword strings.
func splitKeywords(keywords string) []string {
	if strings.TrimSpace(keywords) == "" {
		return nil
	}
	return normalizeAll(strings.Split(keywords, ","))
}
