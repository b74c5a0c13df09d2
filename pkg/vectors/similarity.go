// Package vectors contains the consumers of trained embeddings:
// cosine similarity and distance, nearest-neighbor and analogy queries,
// the question-words accuracy benchmark, and the vector file writers.
package vectors

import (
	"container/heap"
	"fmt"

	"github.com/fatmas1982/multivec/pkg/corpus"
	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/vocab"
	"gonum.org/v1/gonum/blas/gonum"
)

var blasEngine = gonum.Implementation{}

func cosine(v1, v2 []float32) float32 {
	dot := blasEngine.Sdot(len(v1), v1, 1, v2, 1)
	n1 := blasEngine.Snrm2(len(v1), v1, 1)
	n2 := blasEngine.Snrm2(len(v2), v2, 1)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	return dot / (n1 * n2)
}

// Similarity returns the cosine similarity of two words under the given
// policy. Identical words score 1.0 without a lookup; an unknown word
// is an error, never a misleading number.
func Similarity(m *model.Model, word1, word2 string, policy model.Policy) (float32, error) {
	if word1 == word2 {
		return 1.0, nil
	}
	v1, err := m.WordVec(word1, policy)
	if err != nil {
		return 0, err
	}
	v2, err := m.WordVec(word2, policy)
	if err != nil {
		return 0, err
	}
	return cosine(v1, v2), nil
}

// Distance returns 1 - Similarity.
func Distance(m *model.Model, word1, word2 string, policy model.Policy) (float32, error) {
	sim, err := Similarity(m, word1, word2, policy)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// SimilarityNgrams compares two token sequences pairwise and averages
// the per-pair similarities. Sequences of different length fail fast;
// pairs with an out-of-vocabulary word are skipped, but if every pair
// is skipped the whole comparison fails.
func SimilarityNgrams(m *model.Model, seq1, seq2 string, policy model.Policy) (float32, error) {
	words1 := corpus.Tokenize(seq1)
	words2 := corpus.Tokenize(seq2)
	if len(words1) != len(words2) {
		return 0, fmt.Errorf("input sequences don't have the same size (%d vs %d)", len(words1), len(words2))
	}

	var sum float32
	n := 0
	for i := range words1 {
		sim, err := Similarity(m, words1[i], words2[i], policy)
		if err != nil {
			continue
		}
		sum += sim
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("all word pairs are unknown (OOV)")
	}
	return sum / float32(n), nil
}

// Neighbor is one nearest-neighbor result.
type Neighbor struct {
	Word       string
	Similarity float32
}

// neighborHeap is a bounded min-heap: the worst of the current top-n
// sits at the root and is evicted first.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return h[i].Similarity < h[j].Similarity }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) { *h = append(*h, x.(Neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// closestTo scans the vocabulary for the n words most similar to the
// query vector, skipping the given words (usually the query terms).
func closestTo(m *model.Model, query []float32, n int, policy model.Policy, skip map[string]bool) []Neighbor {
	h := make(neighborHeap, 0, n+1)
	m.Vocab().Scan(func(node *vocab.Node) {
		if skip[node.Word] {
			return
		}
		v, err := m.WordVec(node.Word, policy)
		if err != nil {
			return
		}
		heap.Push(&h, Neighbor{Word: node.Word, Similarity: cosine(query, v)})
		if h.Len() > n {
			heap.Pop(&h)
		}
	})

	// Drain the heap into descending order.
	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Neighbor)
	}
	return out
}

// Closest returns the n in-vocabulary words most similar to word.
func Closest(m *model.Model, word string, n int, policy model.Policy) ([]Neighbor, error) {
	v, err := m.WordVec(word, policy)
	if err != nil {
		return nil, err
	}
	return closestTo(m, v, n, policy, map[string]bool{word: true}), nil
}

// Analogy answers "a is to b as c is to ?" by ranking the vocabulary
// against vector(b) - vector(a) + vector(c).
func Analogy(m *model.Model, a, b, c string, n int, policy model.Policy) ([]Neighbor, error) {
	va, err := m.WordVec(a, policy)
	if err != nil {
		return nil, err
	}
	vb, err := m.WordVec(b, policy)
	if err != nil {
		return nil, err
	}
	vc, err := m.WordVec(c, policy)
	if err != nil {
		return nil, err
	}

	query := append([]float32(nil), vb...)
	blasEngine.Saxpy(len(query), -1, va, 1, query, 1)
	blasEngine.Saxpy(len(query), 1, vc, 1, query, 1)
	return closestTo(m, query, n, policy, map[string]bool{a: true, b: true, c: true}), nil
}
