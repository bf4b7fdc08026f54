package feature

// Vector is a sparse mapping from feature name to non-negative weight.
// An absent key means weight 0.
type Vector map[string]float64

// Dot returns the dot product of two sparse vectors. Missing keys on either
// side contribute 0, so only the intersection matters.
func (v Vector) Dot(other Vector) float64 {
	// Iterate the smaller map.
	if len(other) < len(v) {
		v, other = other, v
	}

	var sum float64
	for name, weight := range v {
		if w, ok := other[name]; ok {
			sum += weight * w
		}
	}
	return sum
}

// NormSquared returns the squared Euclidean norm of the vector.
func (v Vector) NormSquared() float64 {
	var sum float64
	for _, weight := range v {
		sum += weight * weight
	}
	return sum
}

// Aspect identifies one of the four content aspects a book vector is built
// from. Keeping aspects as distinct typed sub-vectors (instead of merging
// everything under prefixed string keys) rules out cross-aspect key
// collisions by construction.
type Aspect string

const (
	AspectCategory    Aspect = "category"
	AspectKeyword     Aspect = "keyword"
	AspectAuthor      Aspect = "author"
	AspectDescription Aspect = "description"
)

// Aspects lists all aspects in stable order.
var Aspects = []Aspect{AspectCategory, AspectKeyword, AspectAuthor, AspectDescription}

// AspectWeights are the fixed weights used to blend per-aspect similarities
// into an overall score.
var AspectWeights = map[Aspect]float64{
	AspectCategory:    0.4,
	AspectKeyword:     0.3,
	AspectAuthor:      0.2,
	AspectDescription: 0.1,
}

// BookVector is the derived feature-vector artifact for one book: four
// aspect sub-vectors retained separately for explainability.
//
// Lifecycle: computed on demand, cached keyed by book id, overwritten
// whenever recomputed (last-write-wins, no versioning).
type BookVector struct {
	BookID  int64             `json:"bookId"`
	Aspects map[Aspect]Vector `json:"aspects"`
}

// Aspect returns the sub-vector for one aspect (possibly nil).
func (bv *BookVector) Aspect(a Aspect) Vector {
	if bv == nil {
		return nil
	}
	return bv.Aspects[a]
}

// BuildBookVector builds the four aspect sub-vectors from extracted
// feature lists.
//
// Category, keyword and author sub-vectors are binary (presence, not
// frequency). The description sub-vector uses simple term frequency:
// occurrence count divided by total terms. Corpus-wide IDF is deliberately
// avoided since it would require a full-corpus pass on every update.
func BuildBookVector(bookID int64, f Features) *BookVector {
	return &BookVector{
		BookID: bookID,
		Aspects: map[Aspect]Vector{
			AspectCategory:    binaryVector(f.Categories),
			AspectKeyword:     binaryVector(f.Keywords),
			AspectAuthor:      binaryVector(f.Authors),
			AspectDescription: termFrequencyVector(f.Terms),
		},
	}
}

// binaryVector assigns weight 1.0 to every present feature.
func binaryVector(names []string) Vector {
	v := make(Vector, len(names))
	for _, name := range names {
		v[name] = 1.0
	}
	return v
}

// termFrequencyVector weights each term by occurrences / total terms.
func termFrequencyVector(terms []string) Vector {
	if len(terms) == 0 {
		return Vector{}
	}

	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}

	total := float64(len(terms))
	v := make(Vector, len(counts))
	for term, count := range counts {
		v[term] = float64(count) / total
	}
	return v
}

// PreferenceVector converts a declared category-preference map into a
// sparse vector usable with the same cosine metric as book vectors.
func PreferenceVector(categories map[string]float64) Vector {
	v := make(Vector, len(categories))
	for name, weight := range categories {
		if n := normalize(name); n != "" {
			v[n] = weight
		}
	}
	return v
}
