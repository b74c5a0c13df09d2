package model

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"

	"github.com/fatmas1982/multivec/pkg/vocab"
)

// onlineSeed feeds the per-inference random generators; inference has
// no reproducibility contract, it only needs independent streams.
var onlineSeed atomic.Int64

// SentVec fits a paragraph vector for unseen text against the trained
// model (Le & Mikolov). It allocates a fresh row in the online
// sentence matrix and runs Epochs gradient passes over the sentence
// with the learning rate decaying linearly to zero. When Freeze is
// set, gradients flow only into the new row: the word and output
// matrices stay untouched.
//
// Safe for concurrent use; each call owns its row.
func (m *Model) SentVec(sentence string) ([]float32, error) {
	if m.inputWeights == nil {
		return nil, fmt.Errorf("sentvec: model is not trained")
	}
	nodes, _ := m.getNodes(sentence)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("sentvec: no known words in %q", sentence)
	}

	rng := rand.New(rand.NewSource(m.cfg.Seed + onlineSeed.Add(1)))

	row := make([]float32, m.cfg.Dimension)
	for j := range row {
		row[j] = (rng.Float32() - 0.5) / float32(m.cfg.Dimension)
	}
	m.onlineMu.Lock()
	m.onlineSent = append(m.onlineSent, row)
	m.onlineMu.Unlock()

	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		alpha := m.cfg.Alpha * (1 - float32(epoch)/float32(m.cfg.Epochs))
		kept := m.subsample(append([]*vocab.Node(nil), nodes...), rng)
		for pos := range kept {
			m.trainOnlineWord(kept, pos, row, alpha, rng)
		}
	}
	return row, nil
}

// SentVecAll computes a paragraph vector for every line of the reader
// and hands each (line, vector) pair to the callback. Lines with no
// known words produce a nil vector.
func (m *Model) SentVecAll(r io.Reader, fn func(line string, vec []float32)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		vec, err := m.SentVec(line)
		if err != nil {
			vec = nil
		}
		fn(line, vec)
	}
	return scanner.Err()
}

// trainOnlineWord is the inference twin of trainWord: the fresh
// sentence row takes the place of the trained sentence matrix, and the
// freeze flag decides whether anything else learns.
func (m *Model) trainOnlineWord(nodes []*vocab.Node, pos int, row []float32, alpha float32, rng *rand.Rand) {
	update := !m.cfg.Freeze
	dim := m.cfg.Dimension
	win := m.window(rng)

	if m.cfg.SkipGram {
		hidden := make([]float32, dim)
		copy(hidden, m.inputWeights[nodes[pos].Index])
		axpy(1, row, hidden)

		errVec := make([]float32, dim)
		trained := false
		for c := pos - win; c <= pos+win; c++ {
			if c == pos || c < 0 || c >= len(nodes) {
				continue
			}
			axpy(1, m.objective(nodes[c], hidden, alpha, update, rng), errVec)
			trained = true
		}
		if !trained {
			return
		}
		if update {
			axpy(1, errVec, m.inputWeights[nodes[pos].Index])
		}
		axpy(1, errVec, row)
		return
	}

	hidden := make([]float32, dim)
	contributors := 1 // the sentence row always contributes
	axpy(1, row, hidden)
	for c := pos - win; c <= pos+win; c++ {
		if c == pos || c < 0 || c >= len(nodes) {
			continue
		}
		axpy(1, m.inputWeights[nodes[c].Index], hidden)
		contributors++
	}
	scal(1/float32(contributors), hidden)

	errVec := m.objective(nodes[pos], hidden, alpha, update, rng)
	scal(1/float32(contributors), errVec)
	if update {
		for c := pos - win; c <= pos+win; c++ {
			if c == pos || c < 0 || c >= len(nodes) {
				continue
			}
			axpy(1, errVec, m.inputWeights[nodes[c].Index])
		}
	}
	axpy(1, errVec, row)
}
