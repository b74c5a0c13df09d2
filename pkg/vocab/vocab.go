package vocab

import (
	"bufio"
	"container/heap"
	"fmt"
	"os"

	"github.com/fatmas1982/multivec/pkg/corpus"
	"github.com/tidwall/btree"
)

// Vocabulary maps word text to Huffman nodes. Nodes live in a single
// arena slice whose position equals Node.Index; the btree map gives
// ordered, deterministic iteration for export and persistence.
//
// A Vocabulary is mutable while it is being built and strictly
// read-only once training starts.
type Vocabulary struct {
	words *btree.Map[string, int32]
	nodes []*Node

	// leaves is the number of leaf nodes; arena positions >= leaves are
	// internal tree nodes. Equal to len(nodes) until BuildTree runs.
	leaves int

	TotalWords int64 // token count of the training corpus
	TotalLines int64 // sentence (line) count of the training corpus
}

// New returns an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{words: new(btree.Map[string, int32])}
}

// Add inserts word as a new leaf with count 1, or increments the count
// of an existing entry. The word is expected to be case-folded already.
func (v *Vocabulary) Add(word string) *Node {
	if pos, ok := v.words.Get(word); ok {
		n := v.nodes[pos]
		n.Count++
		return n
	}
	n := &Node{Word: word, Count: 1, Index: int32(len(v.nodes)), Leaf: true}
	v.nodes = append(v.nodes, n)
	v.leaves = len(v.nodes)
	v.words.Set(word, n.Index)
	return n
}

// Get returns the node for word, or the UNK sentinel if the word is not
// part of the vocabulary.
func (v *Vocabulary) Get(word string) *Node {
	if pos, ok := v.words.Get(word); ok {
		return v.nodes[pos]
	}
	return &UNK
}

// Node returns the arena entry at index.
func (v *Vocabulary) Node(index int32) *Node {
	return v.nodes[index]
}

// Size returns the number of words (leaves).
func (v *Vocabulary) Size() int {
	return v.leaves
}

// InternalCount returns the number of internal tree nodes, which is the
// row count of a hierarchical-softmax output matrix.
func (v *Vocabulary) InternalCount() int {
	return len(v.nodes) - v.leaves
}

// Scan performs the word-collection callback for every leaf in index
// order. Used by export and persistence.
func (v *Vocabulary) Scan(fn func(n *Node)) {
	for _, n := range v.nodes[:v.leaves] {
		fn(n)
	}
}

// Build populates the vocabulary from a training file in a single
// streaming pass, one sentence per line, accumulating the corpus token
// and line totals as it goes.
func (v *Vocabulary) Build(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		v.TotalLines++
		for _, w := range corpus.Tokenize(scanner.Text()) {
			v.Add(w)
			v.TotalWords++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("vocab: %w", err)
	}
	return nil
}

// Reduce removes every word whose count is below minCount and
// reassigns leaf indices densely over the survivors. Calling it again
// with the same threshold is a no-op. Any previously built tree is
// discarded; BuildTree must run after the final Reduce.
func (v *Vocabulary) Reduce(minCount int64) {
	kept := make([]*Node, 0, v.leaves)
	for _, n := range v.nodes[:v.leaves] {
		if n.Count >= minCount {
			kept = append(kept, n)
		}
	}
	v.words = new(btree.Map[string, int32])
	for i, n := range kept {
		n.Index = int32(i)
		n.Code = nil
		n.Parents = nil
		v.words.Set(n.Word, n.Index)
	}
	v.nodes = kept
	v.leaves = len(kept)
}

// treeItem is a pending Huffman subtree, keyed by its total count.
type treeItem struct {
	index int32
	count int64
}

type treeHeap []treeItem

func (h treeHeap) Len() int { return len(h) }
func (h treeHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	// Tie-break on index so the tree shape is deterministic.
	return h[i].index < h[j].index
}
func (h treeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *treeHeap) Push(x any) { *h = append(*h, x.(treeItem)) }

func (h *treeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BuildTree constructs the Huffman tree over the current leaves by
// repeatedly merging the two lowest-count subtrees, then assigns every
// leaf its bit code and parent chain. Internal nodes are appended to
// the arena with indices continuing after the leaves.
func (v *Vocabulary) BuildTree() {
	v.nodes = v.nodes[:v.leaves]
	if v.leaves == 0 {
		return
	}

	h := make(treeHeap, 0, v.leaves)
	children := make(map[int32][2]int32, v.leaves)
	for _, n := range v.nodes {
		h = append(h, treeItem{index: n.Index, count: n.Count})
	}
	heap.Init(&h)

	for h.Len() > 1 {
		min1 := heap.Pop(&h).(treeItem)
		min2 := heap.Pop(&h).(treeItem)
		parent := &Node{
			Index: int32(len(v.nodes)),
			Count: min1.count + min2.count,
		}
		v.nodes = append(v.nodes, parent)
		children[parent.Index] = [2]int32{min1.index, min2.index}
		heap.Push(&h, treeItem{index: parent.Index, count: parent.Count})
	}

	root := heap.Pop(&h).(treeItem)
	v.assignCodes(root.index, children, nil, nil)
}

// assignCodes walks the tree from the root, appending bit 0 on the left
// branch and bit 1 on the right, and records on every leaf the
// accumulated code and the chain of internal nodes traversed.
func (v *Vocabulary) assignCodes(index int32, children map[int32][2]int32, code []byte, parents []int32) {
	n := v.nodes[index]
	kids, internal := children[index]
	if !internal {
		n.Code = append([]byte(nil), code...)
		n.Parents = append([]int32(nil), parents...)
		return
	}
	parents = append(parents, index)
	v.assignCodes(kids[0], children, append(code, 0), parents)
	v.assignCodes(kids[1], children, append(code, 1), parents)
}
