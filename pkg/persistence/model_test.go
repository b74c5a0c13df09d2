package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/vocab"
)

func trainedModel(t *testing.T) *model.Model {
	t.Helper()

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("the cat sat on the mat .\n")
		sb.WriteString("the dog sat on the rug .\n")
	}
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.Dimension = 8
	cfg.MinCount = 1
	cfg.Epochs = 1
	cfg.Threads = 1
	cfg.HierarchicalSoftmax = true
	cfg.Negative = 0
	cfg.SentVector = true
	cfg.Seed = 3

	m := model.New(cfg)
	if err := m.Train(path); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := trainedModel(t)
	path := filepath.Join(t.TempDir(), "model.bin")

	if err := Save(m, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Config() != m.Config() {
		t.Errorf("Config mismatch: %+v vs %+v", loaded.Config(), m.Config())
	}
	if loaded.Vocab().Size() != m.Vocab().Size() {
		t.Fatalf("Vocabulary size mismatch: %d vs %d", loaded.Vocab().Size(), m.Vocab().Size())
	}
	if loaded.Vocab().TotalWords != m.Vocab().TotalWords {
		t.Errorf("TotalWords mismatch")
	}

	m.Vocab().Scan(func(n *vocab.Node) {
		ln := loaded.Vocab().Get(n.Word)
		if ln.Unknown() {
			t.Fatalf("Word %q lost in round trip", n.Word)
		}
		if ln.Index != n.Index || ln.Count != n.Count {
			t.Errorf("Word %q: index/count mismatch (%d/%d vs %d/%d)",
				n.Word, ln.Index, ln.Count, n.Index, n.Count)
		}
		// The Huffman tree is rebuilt from counts, deterministically.
		if len(ln.Code) != len(n.Code) {
			t.Errorf("Word %q: code length changed across round trip", n.Word)
		}
		for i := range n.Code {
			if ln.Code[i] != n.Code[i] {
				t.Errorf("Word %q: code bit %d changed across round trip", n.Word, i)
			}
		}

		want, _ := m.WordVec(n.Word, model.PolicyInput)
		got, err := loaded.WordVec(n.Word, model.PolicyInput)
		if err != nil {
			t.Fatalf("WordVec(%q) after load: %v", n.Word, err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Word %q: vector changed across round trip", n.Word)
			}
		}
	})

	if loaded.SentWeights().Rows() != m.SentWeights().Rows() {
		t.Errorf("Sentence matrix rows mismatch: %d vs %d",
			loaded.SentWeights().Rows(), m.SentWeights().Rows())
	}
}

func TestLoadNegativeSamplingModelSentVec(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("the cat sat on the mat .\n")
		sb.WriteString("the dog sat on the rug .\n")
	}
	corpusPath := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(corpusPath, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.Dimension = 8
	cfg.MinCount = 1
	cfg.Epochs = 1
	cfg.Threads = 1
	cfg.HierarchicalSoftmax = false
	cfg.Negative = 2
	cfg.Seed = 3

	m := model.New(cfg)
	if err := m.Train(corpusPath); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := Save(m, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The loaded model must rebuild the unigram table: online inference
	// reaches the negative-sampling update.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	vec, err := loaded.SentVec("the cat sat on the mat .")
	if err != nil {
		t.Fatalf("SentVec on a loaded model failed: %v", err)
	}
	if len(vec) != cfg.Dimension {
		t.Fatalf("Expected a %d-dimensional vector, got %d", cfg.Dimension, len(vec))
	}
	for i, v := range vec {
		if v != v {
			t.Fatalf("Vector component %d is NaN", i)
		}
	}
}

func TestLoadRejectsCorruptedFile(t *testing.T) {
	m := trainedModel(t)
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := Save(m, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Flip a byte in the middle of the file.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data[len(data)/2] ^= 0xFF
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Expected an error loading a corrupted model file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf strings.Builder
	fw := NewFrameWriter(&buf)
	payload := []byte("hello frames")
	if err := fw.WriteFrame(OpCodeConfig, payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	op, got, err := ReadFrame(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if op != OpCodeConfig {
		t.Errorf("OpCode = %d, want %d", op, OpCodeConfig)
	}
	if string(got) != string(payload) {
		t.Errorf("Payload = %q, want %q", got, payload)
	}
}
