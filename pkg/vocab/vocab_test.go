package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFromString(t *testing.T, corpus string) *Vocabulary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0644))

	v := New()
	require.NoError(t, v.Build(path))
	return v
}

func TestBuildExampleCorpus(t *testing.T) {
	v := buildFromString(t, "the cat sat .\nthe dog sat .\n")

	assert.Equal(t, int64(8), v.TotalWords)
	assert.Equal(t, int64(2), v.TotalLines)

	v.Reduce(1)
	assert.Equal(t, 5, v.Size(), "expected exactly {the, cat, sat, ., dog}")

	assert.Equal(t, int64(2), v.Get("the").Count)
	assert.Equal(t, int64(2), v.Get("sat").Count)
	assert.Equal(t, int64(1), v.Get("dog").Count)
	assert.True(t, v.Get("elephant").Unknown())

	v.BuildTree()
	v.Scan(func(n *Node) {
		assert.NotEmpty(t, n.Code, "leaf %q must have a non-empty Huffman code", n.Word)
		assert.Equal(t, len(n.Code), len(n.Parents), "code and parent chain must align for %q", n.Word)
	})
}

func TestCodesArePrefixFree(t *testing.T) {
	v := buildFromString(t, strings.Repeat("the quick brown fox jumps over a lazy dog .\n", 3)+
		"the fox likes the dog .\n")
	v.Reduce(1)
	v.BuildTree()

	codes := map[string]string{}
	v.Scan(func(n *Node) {
		var sb strings.Builder
		for _, bit := range n.Code {
			sb.WriteByte('0' + bit)
		}
		codes[n.Word] = sb.String()
	})

	for w1, c1 := range codes {
		for w2, c2 := range codes {
			if w1 == w2 {
				continue
			}
			assert.False(t, strings.HasPrefix(c2, c1),
				"code of %q (%s) is a prefix of code of %q (%s)", w1, c1, w2, c2)
		}
	}
}

func TestReduceIsIdempotent(t *testing.T) {
	v := buildFromString(t, "a a a b b c\na b a b .\n")

	v.Reduce(2)
	sizeAfterFirst := v.Size()
	words := map[string]int32{}
	v.Scan(func(n *Node) { words[n.Word] = n.Index })

	v.Reduce(2)
	assert.Equal(t, sizeAfterFirst, v.Size(), "second Reduce must not change the vocabulary")
	v.Scan(func(n *Node) {
		assert.Equal(t, words[n.Word], n.Index, "second Reduce must not move %q", n.Word)
	})
}

func TestReduceReindexesDensely(t *testing.T) {
	v := buildFromString(t, "a a a b c c c\n")
	v.Reduce(2) // drops b

	assert.Equal(t, 2, v.Size())
	seen := map[int32]bool{}
	v.Scan(func(n *Node) {
		assert.Less(t, n.Index, int32(v.Size()))
		seen[n.Index] = true
	})
	assert.Len(t, seen, 2, "indices must be dense over 0..n-1")
}

func TestInternalNodesNumberedAfterLeaves(t *testing.T) {
	v := buildFromString(t, "a a a a b b b c c d\n")
	v.Reduce(1)
	v.BuildTree()

	leaves := v.Size()
	assert.Equal(t, leaves-1, v.InternalCount())
	v.Scan(func(n *Node) {
		for _, p := range n.Parents {
			assert.GreaterOrEqual(t, p, int32(leaves), "parent of %q must be an internal node", n.Word)
		}
	})
}

func TestUNKSentinel(t *testing.T) {
	assert.True(t, UNK.Unknown())
	assert.Equal(t, int32(-1), UNK.Index)
}
