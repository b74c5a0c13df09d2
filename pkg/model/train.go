package model

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/fatmas1982/multivec/pkg/corpus"
	"github.com/fatmas1982/multivec/pkg/metrics"
	"github.com/fatmas1982/multivec/pkg/vocab"
	"github.com/google/uuid"
)

// alphaUpdateInterval is the per-worker word count between learning
// rate recomputations, matching the word2vec convention.
const alphaUpdateInterval = 10000

// Train builds the vocabulary and trains the model from scratch on a
// plain-text corpus, one sentence per line. The vocabulary, Huffman
// tree and unigram table are built serially; the file is then split
// into Threads line-aligned chunks and each epoch runs one worker
// goroutine per chunk. All workers are joined before Train returns, so
// the matrices are quiescent for any save or export that follows.
func (m *Model) Train(path string) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	runID := uuid.New().String()

	m.vocab = vocab.New()
	if err := m.vocab.Build(path); err != nil {
		return err
	}
	m.vocab.Reduce(int64(m.cfg.MinCount))
	m.vocab.BuildTree()
	if m.vocab.Size() == 0 {
		return fmt.Errorf("train: vocabulary is empty after pruning (min_count=%d)", m.cfg.MinCount)
	}
	log.Printf("Training run %s: vocabulary size %d, %d words, %d lines.",
		runID, m.vocab.Size(), m.vocab.TotalWords, m.vocab.TotalLines)
	metrics.VocabularySize.Set(float64(m.vocab.Size()))

	if m.cfg.Negative > 0 {
		m.table = vocab.NewUnigramTable(m.vocab, vocab.DefaultTableSize, vocab.DefaultPower)
	}
	m.initNets(rand.New(rand.NewSource(m.cfg.Seed)))
	m.wordsProcessed.Store(0)
	m.setAlpha(m.cfg.Alpha)

	chunks, err := corpus.Chunkify(path, m.cfg.Threads)
	if err != nil {
		return err
	}
	firstLine, err := chunkLineOffsets(path, chunks)
	if err != nil {
		return err
	}

	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		var wg sync.WaitGroup
		for id := 0; id < m.cfg.Threads; id++ {
			wg.Add(1)
			go func(id, epoch int) {
				defer wg.Done()
				seed := m.cfg.Seed + int64(epoch)*int64(m.cfg.Threads) + int64(id)
				if err := m.trainChunk(path, chunks, firstLine, id, rand.New(rand.NewSource(seed))); err != nil {
					log.Printf("Training run %s: worker %d failed: %v", runID, id, err)
				}
			}(id, epoch)
		}
		wg.Wait()
		metrics.EpochsCompleted.Inc()
		log.Printf("Training run %s: epoch %d/%d done, %d words processed, alpha %g.",
			runID, epoch+1, m.cfg.Epochs, m.wordsProcessed.Load(), m.Alpha())
	}
	return nil
}

// chunkLineOffsets returns, for each chunk boundary, the index of the
// first corpus line at or after it. Sentence vectors need the global
// line number of every sentence a worker reads.
func chunkLineOffsets(path string, chunks []int64) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	firstLine := make([]int64, len(chunks))
	r := bufio.NewReader(f)
	var pos, line int64
	for i := 1; i < len(chunks); i++ {
		for pos < chunks[i] {
			b, err := r.ReadBytes('\n')
			pos += int64(len(b))
			line++
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
		}
		firstLine[i] = line
	}
	return firstLine, nil
}

// trainChunk opens an independent read handle on the training file,
// seeks to the worker's chunk and trains on every line until the chunk
// end offset. The shared learning rate is recomputed from the global
// progress counter every alphaUpdateInterval words.
func (m *Model) trainChunk(path string, chunks, firstLine []int64, id int, rng *rand.Rand) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start, end := chunks[id], chunks[id+1]
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return err
	}

	r := bufio.NewReader(f)
	pos := start
	sentID := firstLine[id]
	alpha := m.decayedAlpha()
	var sinceUpdate int64

	for pos < end {
		line, err := r.ReadString('\n')
		pos += int64(len(line))
		if len(line) > 0 {
			words := m.trainSentence(line, int32(sentID), alpha, rng)
			sentID++
			sinceUpdate += int64(words)
			metrics.SentencesTotal.Inc()
			if sinceUpdate >= alphaUpdateInterval {
				m.wordsProcessed.Add(sinceUpdate)
				metrics.WordsProcessed.Add(float64(sinceUpdate))
				sinceUpdate = 0
				alpha = m.decayedAlpha()
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if sinceUpdate > 0 {
		m.wordsProcessed.Add(sinceUpdate)
		metrics.WordsProcessed.Add(float64(sinceUpdate))
	}
	return nil
}

// decayedAlpha computes the current learning rate: linear decay in the
// number of processed words over the whole run, floored at Alpha*1e-4.
// Processed words are raw corpus tokens, the same unit as TotalWords in
// the denominator, so the rate covers its full decay range even when
// pruning drops part of the corpus from training.
func (m *Model) decayedAlpha() float32 {
	processed := m.wordsProcessed.Load()
	total := int64(m.cfg.Epochs)*m.vocab.TotalWords + 1
	alpha := m.cfg.Alpha * (1 - float32(processed)/float32(total))
	if alpha < m.cfg.Alpha*1e-4 {
		alpha = m.cfg.Alpha * 1e-4
	}
	m.setAlpha(alpha)
	return alpha
}

func (m *Model) setAlpha(a float32) {
	m.alphaBits.Store(math.Float32bits(a))
	metrics.CurrentAlpha.Set(float64(a))
}

// Alpha returns the last published learning rate.
func (m *Model) Alpha() float32 {
	return math.Float32frombits(m.alphaBits.Load())
}

// getNodes tokenizes a sentence into vocabulary nodes and the raw token
// count of the line. Out-of-vocabulary tokens are dropped from the node
// sequence: they carry no index into the matrices and cannot contribute
// to a window.
func (m *Model) getNodes(sentence string) ([]*vocab.Node, int) {
	words := corpus.Tokenize(sentence)
	nodes := make([]*vocab.Node, 0, len(words))
	for _, w := range words {
		if n := m.vocab.Get(w); !n.Unknown() {
			nodes = append(nodes, n)
		}
	}
	return nodes, len(words)
}

// subsample drops frequent words in place with the word2vec keep
// probability: a word far above the subsampling threshold is discarded
// most of the time, a rare word is always kept.
func (m *Model) subsample(nodes []*vocab.Node, rng *rand.Rand) []*vocab.Node {
	if m.cfg.Subsample <= 0 {
		return nodes
	}
	threshold := float64(m.cfg.Subsample) * float64(m.vocab.TotalWords)
	kept := nodes[:0]
	for _, n := range nodes {
		keep := (math.Sqrt(float64(n.Count)/threshold) + 1) * threshold / float64(n.Count)
		if keep >= 1 || rng.Float64() < keep {
			kept = append(kept, n)
		}
	}
	return kept
}

// trainSentence trains every surviving position of one corpus line and
// returns the raw token count it consumed, including pruned and unknown
// tokens, which feeds the progress counter.
func (m *Model) trainSentence(sentence string, sentID int32, alpha float32, rng *rand.Rand) int {
	nodes, read := m.getNodes(sentence)
	nodes = m.subsample(nodes, rng)
	for pos := range nodes {
		m.trainWord(nodes, pos, sentID, alpha, rng)
	}
	return read
}

// trainWord dispatches one target position to CBOW or skip-gram.
func (m *Model) trainWord(nodes []*vocab.Node, pos int, sentID int32, alpha float32, rng *rand.Rand) {
	if m.cfg.SkipGram {
		m.trainWordSkipGram(nodes, pos, sentID, alpha, rng)
	} else {
		m.trainWordCBOW(nodes, pos, sentID, alpha, rng)
	}
}

// window returns the context span for one position: the per-position
// effective window is sampled uniformly from [1, Window], the word2vec
// trick that weights nearby words more heavily.
func (m *Model) window(rng *rand.Rand) int {
	return 1 + rng.Intn(m.cfg.Window)
}

// trainWordCBOW averages the context embeddings (and the sentence
// vector, when enabled) into one hidden vector, runs the objective
// against the target node, and distributes the returned error equally
// back to every contributor.
func (m *Model) trainWordCBOW(nodes []*vocab.Node, pos int, sentID int32, alpha float32, rng *rand.Rand) {
	dim := m.cfg.Dimension
	win := m.window(rng)

	hidden := make([]float32, dim)
	contributors := 0
	for c := pos - win; c <= pos+win; c++ {
		if c == pos || c < 0 || c >= len(nodes) {
			continue
		}
		axpy(1, m.inputWeights[nodes[c].Index], hidden)
		contributors++
	}
	if m.cfg.SentVector {
		axpy(1, m.sentWeights[sentID], hidden)
		contributors++
	}
	if contributors == 0 {
		return
	}
	scal(1/float32(contributors), hidden)

	errVec := m.objective(nodes[pos], hidden, alpha, true, rng)

	// Equal shares of the error go back to every contributor.
	scal(1/float32(contributors), errVec)
	for c := pos - win; c <= pos+win; c++ {
		if c == pos || c < 0 || c >= len(nodes) {
			continue
		}
		axpy(1, errVec, m.inputWeights[nodes[c].Index])
	}
	if m.cfg.SentVector {
		axpy(1, errVec, m.sentWeights[sentID])
	}
}

// trainWordSkipGram predicts each context word from the target word's
// embedding (plus the sentence vector, when enabled), accumulating the
// error over the whole window before applying it to the target row.
func (m *Model) trainWordSkipGram(nodes []*vocab.Node, pos int, sentID int32, alpha float32, rng *rand.Rand) {
	dim := m.cfg.Dimension
	win := m.window(rng)

	hidden := make([]float32, dim)
	copy(hidden, m.inputWeights[nodes[pos].Index])
	if m.cfg.SentVector {
		axpy(1, m.sentWeights[sentID], hidden)
	}

	errVec := make([]float32, dim)
	trained := false
	for c := pos - win; c <= pos+win; c++ {
		if c == pos || c < 0 || c >= len(nodes) {
			continue
		}
		axpy(1, m.objective(nodes[c], hidden, alpha, true, rng), errVec)
		trained = true
	}
	if !trained {
		return
	}

	axpy(1, errVec, m.inputWeights[nodes[pos].Index])
	if m.cfg.SentVector {
		axpy(1, errVec, m.sentWeights[sentID])
	}
}

// objective runs the configured output-layer update (hierarchical
// softmax and/or negative sampling) for one target node and returns the
// error vector to propagate back to the input side. With update=false
// the output matrices are left untouched (frozen inference).
func (m *Model) objective(target *vocab.Node, hidden []float32, alpha float32, update bool, rng *rand.Rand) []float32 {
	errVec := make([]float32, m.cfg.Dimension)
	if m.cfg.HierarchicalSoftmax {
		m.hierarchicalUpdate(target, hidden, errVec, alpha, update)
	}
	if m.cfg.Negative > 0 {
		m.negSamplingUpdate(target, hidden, errVec, alpha, update, rng)
	}
	return errVec
}

// hierarchicalUpdate walks the target's root-to-leaf path. At each
// internal node the binary decision is trained: the label is the code
// bit at that depth, the prediction is sigmoid of the dot product with
// that node's output row.
func (m *Model) hierarchicalUpdate(target *vocab.Node, hidden, errVec []float32, alpha float32, update bool) {
	leaves := int32(m.vocab.Size())
	for d, parent := range target.Parents {
		row := m.outputWeightsHS[parent-leaves]
		pred := Sigmoid(dot(row, hidden))
		g := (float32(target.Code[d]) - pred) * alpha
		axpy(g, row, errVec)
		if update {
			axpy(g, hidden, row)
		}
	}
}

// negSamplingUpdate trains one positive example against Negative noise
// words drawn from the unigram table. A draw that collides with the
// positive target is skipped without replacement, as in the reference
// word2vec implementation.
func (m *Model) negSamplingUpdate(target *vocab.Node, hidden, errVec []float32, alpha float32, update bool, rng *rand.Rand) {
	for d := 0; d <= m.cfg.Negative; d++ {
		index := target.Index
		label := float32(1)
		if d > 0 {
			index = m.table.Sample(rng)
			if index == target.Index {
				continue
			}
			label = 0
		}
		row := m.outputWeights[index]
		pred := Sigmoid(dot(row, hidden))
		g := (label - pred) * alpha
		axpy(g, row, errVec)
		if update {
			axpy(g, hidden, row)
		}
	}
}
