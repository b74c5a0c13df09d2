package model

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/fatmas1982/multivec/pkg/vocab"
)

// Policy selects which matrix a word vector is read from.
type Policy int

const (
	// PolicyInput reads the input embedding (the usual word vector).
	PolicyInput Policy = iota
	// PolicyOutput reads the negative-sampling output weights.
	PolicyOutput
	// PolicySum reads the element-wise sum of input and output rows.
	PolicySum
)

// Model holds the vocabulary, the weight matrices and the training
// state of a monolingual embedding model.
//
// The matrices are created at training start, sized from the final
// vocabulary and sentence counts, and then shared by every worker with
// no locking: concurrent read-modify-write on individual weight entries
// is the asynchronous-SGD trade-off this design deliberately makes.
// Only the progress counter uses an atomic add, because its value feeds
// the learning-rate decay and must remain monotone.
type Model struct {
	cfg   Config
	vocab *vocab.Vocabulary
	table *vocab.UnigramTable

	inputWeights    Matrix // vocab_size x dim
	outputWeights   Matrix // vocab_size x dim, negative sampling
	outputWeightsHS Matrix // internal_node_count x dim, hierarchical softmax
	sentWeights     Matrix // training_lines x dim, only with SentVector

	// onlineSent grows one row per inferred sentence vector after
	// training; unlike the training matrices it is guarded, because
	// rows are appended concurrently by API callers.
	onlineMu   sync.Mutex
	onlineSent Matrix

	wordsProcessed atomic.Int64
	alphaBits      atomic.Uint32 // last published learning rate, for observability
}

// New returns an untrained model with the given configuration.
func New(cfg Config) *Model {
	return &Model{cfg: cfg, vocab: vocab.New()}
}

// Restore assembles a model from persisted state. The vocabulary must
// already carry its Huffman tree; the caller owns getting the matrix
// shapes right (persistence does). When negative sampling is enabled
// the unigram table is rebuilt from the vocabulary counts, so online
// inference works on a restored model.
func Restore(cfg Config, v *vocab.Vocabulary, input, output, outputHS, sent Matrix) *Model {
	m := &Model{cfg: cfg, vocab: v,
		inputWeights:    input,
		outputWeights:   output,
		outputWeightsHS: outputHS,
		sentWeights:     sent,
	}
	if cfg.Negative > 0 {
		m.table = vocab.NewUnigramTable(v, vocab.DefaultTableSize, vocab.DefaultPower)
	}
	m.setAlpha(cfg.Alpha)
	return m
}

// InputWeights returns the input embedding matrix.
func (m *Model) InputWeights() Matrix { return m.inputWeights }

// OutputWeights returns the negative-sampling output matrix.
func (m *Model) OutputWeights() Matrix { return m.outputWeights }

// OutputWeightsHS returns the hierarchical-softmax output matrix.
func (m *Model) OutputWeightsHS() Matrix { return m.outputWeightsHS }

// Config returns the model's hyperparameters.
func (m *Model) Config() Config {
	return m.cfg
}

// Vocab returns the vocabulary. Read-only once training has started.
func (m *Model) Vocab() *vocab.Vocabulary {
	return m.vocab
}

// Dimension returns the embedding size.
func (m *Model) Dimension() int {
	return m.cfg.Dimension
}

// initNets sizes and initializes the weight matrices from the final
// vocabulary: random input embeddings, zero output weights, and a
// random sentence matrix when sentence vectors are enabled.
func (m *Model) initNets(r *rand.Rand) {
	dim := m.cfg.Dimension
	size := m.vocab.Size()

	m.inputWeights = NewMatrix(size, dim)
	m.inputWeights.Randomize(r)
	m.outputWeights = NewMatrix(size, dim)
	m.outputWeightsHS = NewMatrix(m.vocab.InternalCount(), dim)

	if m.cfg.SentVector {
		m.sentWeights = NewMatrix(int(m.vocab.TotalLines), dim)
		m.sentWeights.Randomize(r)
	}
}

// WordVec returns the embedding of an in-vocabulary word under the
// given policy. Unknown words are reported as an error rather than a
// misleading zero vector.
func (m *Model) WordVec(word string, policy Policy) ([]float32, error) {
	n := m.vocab.Get(word)
	if n.Unknown() {
		return nil, fmt.Errorf("unknown word %q", word)
	}
	return m.nodeVec(n.Index, policy), nil
}

func (m *Model) nodeVec(index int32, policy Policy) []float32 {
	switch policy {
	case PolicyOutput:
		return append([]float32(nil), m.outputWeights[index]...)
	case PolicySum:
		v := append([]float32(nil), m.inputWeights[index]...)
		axpy(1, m.outputWeights[index], v)
		return v
	default:
		return append([]float32(nil), m.inputWeights[index]...)
	}
}

// SentWeights returns the trained sentence-vector matrix, one row per
// corpus line. Nil unless SentVector was enabled.
func (m *Model) SentWeights() Matrix {
	return m.sentWeights
}

// WordsProcessed returns the shared progress counter.
func (m *Model) WordsProcessed() int64 {
	return m.wordsProcessed.Load()
}

// NormalizeWeights applies per-column min-max normalization to every
// weight matrix, so that similarity scores land in [0, 1].
func (m *Model) NormalizeWeights() {
	m.inputWeights.Normalize()
	m.outputWeights.Normalize()
	m.outputWeightsHS.Normalize()
	m.sentWeights.Normalize()
}
