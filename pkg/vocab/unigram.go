package vocab

import (
	"math"
	"math/rand"
)

const (
	// DefaultTableSize matches the word2vec frequency table size.
	DefaultTableSize = 1e8
	// DefaultPower is the unigram distribution smoothing exponent.
	DefaultPower = 0.75
)

// UnigramTable is a flat, read-only sampling table where each word owns
// a share of slots proportional to count^power. Drawing a uniform slot
// therefore samples words under the smoothed unigram distribution in
// O(1), which is what negative sampling needs on its hot path.
type UnigramTable struct {
	slots []int32
}

// NewUnigramTable fills a table of the given size from the vocabulary
// leaves in index order: each word receives slots until its cumulative
// probability is exhausted, then the fill wraps to the next word.
func NewUnigramTable(v *Vocabulary, size int, power float64) *UnigramTable {
	t := &UnigramTable{slots: make([]int32, size)}
	if v.Size() == 0 || size == 0 {
		return t
	}

	var total float64
	v.Scan(func(n *Node) {
		total += math.Pow(float64(n.Count), power)
	})

	word := int32(0)
	cum := math.Pow(float64(v.Node(word).Count), power) / total
	for i := 0; i < size; i++ {
		t.slots[i] = word
		if float64(i)/float64(size) > cum {
			word++
			if word >= int32(v.Size()) {
				word = int32(v.Size()) - 1
			} else {
				cum += math.Pow(float64(v.Node(word).Count), power) / total
			}
		}
	}
	return t
}

// Sample draws a random leaf index from the smoothed unigram
// distribution using the caller's generator. Each worker owns an
// independently seeded *rand.Rand, so the table itself stays free of
// mutable state.
func (t *UnigramTable) Sample(r *rand.Rand) int32 {
	return t.slots[r.Intn(len(t.slots))]
}

// Len returns the number of slots.
func (t *UnigramTable) Len() int {
	return len(t.slots)
}
