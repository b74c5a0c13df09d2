// Package vocab builds the training vocabulary: a single arena of
// Huffman nodes addressed by stable integer index, the word lookup map,
// and the unigram sampling table used for negative sampling.
//
// Leaves occupy indices 0..L-1 and double as row indices into the
// weight matrices. Internal tree nodes are numbered after the leaves
// (L..2L-2), so a hierarchical-softmax output matrix needs exactly
// InternalCount rows, addressed by parentIndex-L.
package vocab

// Node is a single entry of the Huffman arena: either a vocabulary word
// (leaf) or a merge point of the binary tree (internal node).
type Node struct {
	Word  string
	Count int64

	// Index is the node's position in the arena and, for leaves, its
	// row in the weight matrices. -1 marks the UNK sentinel.
	Index int32

	// Code holds the root-to-leaf path, one bit per level (0 left,
	// 1 right). Parents holds the arena indices of the internal nodes
	// traversed on that same path, aligned with Code. Both are set only
	// on leaves, after the tree is built.
	Code    []byte
	Parents []int32

	Leaf bool
	Sent bool // sentence-id pseudo node, owns a sentence matrix row
}

// UNK is the shared sentinel for out-of-vocabulary words. It carries no
// valid index and must never reach a weight matrix.
var UNK = Node{Index: -1}

// Unknown reports whether the node is the out-of-vocabulary sentinel.
func (n *Node) Unknown() bool {
	return n.Index < 0
}

// SentNode wraps a sentence id as a pseudo leaf. Its index addresses
// the sentence-vector matrix instead of the word matrices.
func SentNode(sentID int32) Node {
	return Node{Index: sentID, Count: 1, Leaf: true, Sent: true}
}
