package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/vocab"
	"gopkg.in/yaml.v3"
)

// Matrix kinds inside an OpCodeMatrix frame.
const (
	matrixInput byte = iota
	matrixOutput
	matrixOutputHS
	matrixSent
)

// Save writes the model to path: config, vocabulary, then every weight
// matrix, each in its own CRC-framed section. The Huffman tree and the
// unigram table are not stored; both are rebuilt deterministically from
// the vocabulary counts on load.
func Save(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fw := NewFrameWriter(w)

	cfgPayload, err := yaml.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	if err := fw.WriteFrame(OpCodeConfig, cfgPayload); err != nil {
		return err
	}

	if err := fw.WriteFrame(OpCodeVocab, encodeVocab(m.Vocab())); err != nil {
		return err
	}

	matrices := []struct {
		kind byte
		m    model.Matrix
	}{
		{matrixInput, m.InputWeights()},
		{matrixOutput, m.OutputWeights()},
		{matrixOutputHS, m.OutputWeightsHS()},
		{matrixSent, m.SentWeights()},
	}
	for _, mx := range matrices {
		if mx.m == nil {
			continue
		}
		if err := fw.WriteFrame(OpCodeMatrix, encodeMatrix(mx.kind, mx.m)); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	return f.Sync()
}

// Load reads a model file written by Save. The vocabulary tree is
// rebuilt, so codes and parent chains match the saved run exactly.
func Load(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var cfg model.Config
	var v *vocab.Vocabulary
	var input, output, outputHS, sent model.Matrix

	for {
		opCode, payload, err := ReadFrame(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("persistence: %w", err)
		}
		switch opCode {
		case OpCodeConfig:
			if err := yaml.Unmarshal(payload, &cfg); err != nil {
				return nil, fmt.Errorf("persistence: config section: %w", err)
			}
		case OpCodeVocab:
			if v, err = decodeVocab(payload); err != nil {
				return nil, err
			}
		case OpCodeMatrix:
			kind, mx, err := decodeMatrix(payload)
			if err != nil {
				return nil, err
			}
			switch kind {
			case matrixInput:
				input = mx
			case matrixOutput:
				output = mx
			case matrixOutputHS:
				outputHS = mx
			case matrixSent:
				sent = mx
			default:
				return nil, fmt.Errorf("persistence: unknown matrix kind %d", kind)
			}
		default:
			return nil, fmt.Errorf("persistence: unknown section opcode %d", opCode)
		}
	}

	if v == nil || input == nil {
		return nil, fmt.Errorf("persistence: model file %q is missing required sections", path)
	}
	v.BuildTree()
	return model.Restore(cfg, v, input, output, outputHS, sent), nil
}

// encodeVocab lays out the vocabulary as:
// totalWords(8) totalLines(8) size(4), then per leaf in index order:
// wordLen(4) word count(8).
func encodeVocab(v *vocab.Vocabulary) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v.TotalWords)
	binary.Write(&buf, binary.LittleEndian, v.TotalLines)
	binary.Write(&buf, binary.LittleEndian, uint32(v.Size()))
	v.Scan(func(n *vocab.Node) {
		binary.Write(&buf, binary.LittleEndian, uint32(len(n.Word)))
		buf.WriteString(n.Word)
		binary.Write(&buf, binary.LittleEndian, n.Count)
	})
	return buf.Bytes()
}

func decodeVocab(payload []byte) (*vocab.Vocabulary, error) {
	r := bytes.NewReader(payload)
	v := vocab.New()

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &v.TotalWords); err != nil {
		return nil, fmt.Errorf("persistence: vocab section: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &v.TotalLines); err != nil {
		return nil, fmt.Errorf("persistence: vocab section: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("persistence: vocab section: %w", err)
	}

	for i := uint32(0); i < size; i++ {
		var wordLen uint32
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("persistence: vocab section: %w", err)
		}
		word := make([]byte, wordLen)
		if _, err := io.ReadFull(r, word); err != nil {
			return nil, fmt.Errorf("persistence: vocab section: %w", err)
		}
		var count int64
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("persistence: vocab section: %w", err)
		}
		v.Add(string(word)).Count = count
	}
	return v, nil
}

// encodeMatrix lays out one matrix as:
// kind(1) rows(4) dim(4), then rows*dim float32 little-endian.
func encodeMatrix(kind byte, m model.Matrix) []byte {
	rows, dim := m.Rows(), m.Dim()
	payload := make([]byte, 9+rows*dim*4)
	payload[0] = kind
	binary.LittleEndian.PutUint32(payload[1:5], uint32(rows))
	binary.LittleEndian.PutUint32(payload[5:9], uint32(dim))

	off := 9
	for _, row := range m {
		for _, val := range row {
			binary.LittleEndian.PutUint32(payload[off:off+4], math.Float32bits(val))
			off += 4
		}
	}
	return payload
}

func decodeMatrix(payload []byte) (byte, model.Matrix, error) {
	if len(payload) < 9 {
		return 0, nil, fmt.Errorf("persistence: matrix section too short")
	}
	kind := payload[0]
	rows := int(binary.LittleEndian.Uint32(payload[1:5]))
	dim := int(binary.LittleEndian.Uint32(payload[5:9]))
	if len(payload) != 9+rows*dim*4 {
		return 0, nil, fmt.Errorf("persistence: matrix section size mismatch (%d rows x %d dim, %d bytes)",
			rows, dim, len(payload))
	}

	m := model.NewMatrix(rows, dim)
	off := 9
	for _, row := range m {
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off : off+4]))
			off += 4
		}
	}
	return kind, m, nil
}
