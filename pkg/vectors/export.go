package vectors

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/vocab"
	"github.com/x448/float16"
)

// Format selects the on-disk layout of an exported vector file.
type Format string

const (
	// FormatText is the word2vec text format: a "size dim" header line,
	// then one "word v1 v2 ..." line per word.
	FormatText Format = "text"
	// FormatBin is the word2vec binary format with float32 values.
	FormatBin Format = "bin"
	// FormatBin16 is the binary format with half-precision values,
	// halving file size at a small accuracy cost.
	FormatBin16 Format = "bin16"
)

// SaveVectors writes every word vector to path in the given format,
// ordered by leaf index, which follows first appearance in the corpus.
func SaveVectors(m *model.Model, path string, format Format, policy model.Policy) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeVectors(m, w, format, policy); err != nil {
		return err
	}
	return w.Flush()
}

func writeVectors(m *model.Model, w io.Writer, format Format, policy model.Policy) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", m.Vocab().Size(), m.Dimension()); err != nil {
		return err
	}

	var outer error
	m.Vocab().Scan(func(n *vocab.Node) {
		if outer != nil {
			return
		}
		vec, err := m.WordVec(n.Word, policy)
		if err != nil {
			outer = err
			return
		}
		outer = writeVector(w, n.Word, vec, format)
	})
	return outer
}

func writeVector(w io.Writer, word string, vec []float32, format Format) error {
	switch format {
	case FormatBin:
		if _, err := fmt.Fprintf(w, "%s ", word); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatBin16:
		if _, err := fmt.Fprintf(w, "%s ", word); err != nil {
			return err
		}
		half := make([]uint16, len(vec))
		for i, v := range vec {
			half[i] = float16.Fromfloat32(v).Bits()
		}
		if err := binary.Write(w, binary.LittleEndian, half); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatText:
		if _, err := io.WriteString(w, word); err != nil {
			return err
		}
		for _, v := range vec {
			if _, err := fmt.Fprintf(w, " %g", v); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "\n")
		return err
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// SaveSentVectors writes the trained sentence-vector matrix in text
// format, one "<sent_N> v1 v2 ..." line per corpus line.
func SaveSentVectors(m *model.Model, path string) error {
	sent := m.SentWeights()
	if sent == nil {
		return fmt.Errorf("export: model was trained without sentence vectors")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d %d\n", sent.Rows(), m.Dimension()); err != nil {
		return err
	}
	for i, row := range sent {
		if err := writeVector(w, fmt.Sprintf("<sent_%d>", i), row, FormatText); err != nil {
			return err
		}
	}
	return w.Flush()
}
