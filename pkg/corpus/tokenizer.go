// Package corpus provides the text-side building blocks for training:
// whitespace tokenization with case folding, and the byte-range chunker
// that splits a training file between worker goroutines.
//
// The corpus format is one sentence per line, tokens separated by
// whitespace. Tokens are counted and looked up in lower case, so a
// corpus containing "The" and "the" contributes to a single vocabulary
// entry.
package corpus

import (
	"strings"
)

// Tokenize splits a line into lower-cased tokens.
// Punctuation is not stripped: corpora for this trainer are expected to
// be pre-tokenized, where "." is a legitimate vocabulary entry.
func Tokenize(line string) []string {
	return strings.Fields(strings.ToLower(line))
}
