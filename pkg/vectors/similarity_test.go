package vectors

import (
	"strings"
	"testing"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/vocab"
)

// fixtureModel builds a tiny model with handcrafted embeddings:
// "north" and "up" point the same way, "south" points the opposite way,
// "east" is orthogonal.
func fixtureModel(t *testing.T) *model.Model {
	t.Helper()

	v := vocab.New()
	for _, w := range []string{"north", "south", "east", "up"} {
		v.Add(w)
	}
	v.BuildTree()

	cfg := model.DefaultConfig()
	cfg.Dimension = 2
	// No sampling table for the handcrafted fixture.
	cfg.Negative = 0
	cfg.HierarchicalSoftmax = true

	input := model.Matrix{
		{0, 1},  // north
		{0, -1}, // south
		{1, 0},  // east
		{0, 2},  // up
	}
	output := model.NewMatrix(4, 2)
	return model.Restore(cfg, v, input, output, nil, nil)
}

func TestSimilarityIdentity(t *testing.T) {
	m := fixtureModel(t)
	for _, w := range []string{"north", "south", "east"} {
		sim, err := Similarity(m, w, w, model.PolicyInput)
		if err != nil {
			t.Fatalf("Similarity(%s, %s) failed: %v", w, w, err)
		}
		if sim != 1.0 {
			t.Errorf("similarity(%s, %s) = %g, want 1.0", w, w, sim)
		}
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	m := fixtureModel(t)
	ab, err := Similarity(m, "north", "east", model.PolicyInput)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	ba, err := Similarity(m, "east", "north", model.PolicyInput)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity must be symmetric: %g vs %g", ab, ba)
	}
}

func TestSimilarityValues(t *testing.T) {
	m := fixtureModel(t)

	sim, _ := Similarity(m, "north", "up", model.PolicyInput)
	if sim < 0.999 {
		t.Errorf("parallel vectors: similarity = %g, want ~1", sim)
	}
	sim, _ = Similarity(m, "north", "south", model.PolicyInput)
	if sim > -0.999 {
		t.Errorf("opposite vectors: similarity = %g, want ~-1", sim)
	}
	sim, _ = Similarity(m, "north", "east", model.PolicyInput)
	if sim != 0 {
		t.Errorf("orthogonal vectors: similarity = %g, want 0", sim)
	}
}

func TestSimilarityUnknownWord(t *testing.T) {
	m := fixtureModel(t)
	if _, err := Similarity(m, "north", "plutonium", model.PolicyInput); err == nil {
		t.Fatal("Expected an error for an unknown word")
	}
	// Identical unknown words still take the identity shortcut, as in
	// the reference implementation.
	sim, err := Similarity(m, "plutonium", "plutonium", model.PolicyInput)
	if err != nil || sim != 1.0 {
		t.Fatalf("identity shortcut: got %g, %v", sim, err)
	}
}

func TestSimilarityNgramsLengthMismatch(t *testing.T) {
	m := fixtureModel(t)
	if _, err := SimilarityNgrams(m, "north south", "east", model.PolicyInput); err == nil {
		t.Fatal("Expected a fail-fast error for mismatched lengths")
	}
}

func TestSimilarityNgramsSkipsOOVPairs(t *testing.T) {
	m := fixtureModel(t)
	// Second pair is OOV and skipped; result is the first pair alone.
	sim, err := SimilarityNgrams(m, "north xzy", "up qqq", model.PolicyInput)
	if err != nil {
		t.Fatalf("SimilarityNgrams failed: %v", err)
	}
	if sim < 0.999 {
		t.Errorf("Expected ~1 from the surviving pair, got %g", sim)
	}
}

func TestSimilarityNgramsAllOOV(t *testing.T) {
	m := fixtureModel(t)
	_, err := SimilarityNgrams(m, "xzy abc", "qqq def", model.PolicyInput)
	if err == nil {
		t.Fatal("Expected an error when every pair is OOV")
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("Error should mention unknown pairs, got: %v", err)
	}
}

func TestClosest(t *testing.T) {
	m := fixtureModel(t)
	near, err := Closest(m, "north", 2, model.PolicyInput)
	if err != nil {
		t.Fatalf("Closest failed: %v", err)
	}
	if len(near) != 2 {
		t.Fatalf("Expected 2 neighbors, got %d", len(near))
	}
	if near[0].Word != "up" {
		t.Errorf("Nearest neighbor of north should be up, got %q", near[0].Word)
	}
	if near[0].Similarity < near[1].Similarity {
		t.Errorf("Neighbors must be sorted by descending similarity")
	}
}

func TestAnalogy(t *testing.T) {
	m := fixtureModel(t)
	// north - south is a pure vertical offset; applied to south it
	// should land back on something pointing up.
	res, err := Analogy(m, "south", "north", "south", 1, model.PolicyInput)
	if err != nil {
		t.Fatalf("Analogy failed: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(res))
	}
	if res[0].Word != "up" {
		t.Errorf("Expected up, got %q", res[0].Word)
	}
}

func TestAnalogyUnknownWord(t *testing.T) {
	m := fixtureModel(t)
	if _, err := Analogy(m, "north", "xyzzy", "south", 1, model.PolicyInput); err == nil {
		t.Fatal("Expected an error for an unknown word")
	}
}
