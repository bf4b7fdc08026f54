package feature

import (
	"math"
	"testing"
)

// TestVectorDot verifies the sparse dot product only counts shared keys.
func TestVectorDot(t *testing.T) {
	a := Vector{"fiction": 1.0, "fantasy": 1.0}
	b := Vector{"fiction": 1.0, "history": 1.0, "science": 1.0}

	if got := a.Dot(b); got != 1.0 {
		t.Errorf("Expected dot product 1.0, got %v", got)
	}

	// Symmetric regardless of which side is larger.
	if got := b.Dot(a); got != 1.0 {
		t.Errorf("Expected dot product 1.0, got %v", got)
	}

	if got := a.Dot(Vector{}); got != 0.0 {
		t.Errorf("Expected dot product 0.0 against empty vector, got %v", got)
	}
}

// TestVectorNormSquared verifies the squared norm.
func TestVectorNormSquared(t *testing.T) {
	v := Vector{"a": 3.0, "b": 4.0}
	if got := v.NormSquared(); got != 25.0 {
		t.Errorf("Expected norm squared 25.0, got %v", got)
	}

	if got := (Vector{}).NormSquared(); got != 0.0 {
		t.Errorf("Expected norm squared 0.0 for empty vector, got %v", got)
	}
}

// TestAspectWeightsSumToOne verifies the fixed aspect weights are a
// convex blend.
func TestAspectWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, aspect := range Aspects {
		sum += AspectWeights[aspect]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Expected aspect weights to sum to 1.0, got %v", sum)
	}
}

// TestBuildBookVector verifies binary and term-frequency sub-vectors.
func TestBuildBookVector(t *testing.T) {
	f := Features{
		Categories: []string{"fiction", "fantasy"},
		Authors:    []string{"frank herbert"},
		Keywords:   []string{"desert"},
		Terms:      []string{"spice", "spice", "desert", "planet"},
	}

	bv := BuildBookVector(42, f)

	if bv.BookID != 42 {
		t.Errorf("Expected book id 42, got %d", bv.BookID)
	}

	categories := bv.Aspect(AspectCategory)
	if categories["fiction"] != 1.0 || categories["fantasy"] != 1.0 {
		t.Errorf("Expected binary category weights, got %v", categories)
	}

	terms := bv.Aspect(AspectDescription)
	if terms["spice"] != 0.5 {
		t.Errorf("Expected term frequency 0.5 for 'spice', got %v", terms["spice"])
	}
	if terms["planet"] != 0.25 {
		t.Errorf("Expected term frequency 0.25 for 'planet', got %v", terms["planet"])
	}
}

// TestBookVectorAspectNil verifies nil-safety of aspect access.
func TestBookVectorAspectNil(t *testing.T) {
	var bv *BookVector
	if got := bv.Aspect(AspectCategory); got != nil {
		t.Errorf("Expected nil aspect from nil vector, got %v", got)
	}
}

// TestPreferenceVector verifies declared category names are normalized.
func TestPreferenceVector(t *testing.T) {
	v := PreferenceVector(map[string]float64{" Fiction ": 0.9, "": 0.5})
	if v["fiction"] != 0.9 {
		t.Errorf("Expected weight 0.9 for 'fiction', got %v", v["fiction"])
	}
	if len(v) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(v))
	}
}
