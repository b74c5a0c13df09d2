package model

import (
	"math/rand"
)

// Matrix is a dense float32 weight matrix, one row per node or sentence
// index. Rows are independent slices so that concurrent workers touch
// disjoint cache lines when they update different rows.
type Matrix [][]float32

// NewMatrix allocates a zero matrix of rows x dim.
func NewMatrix(rows, dim int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float32, dim)
	}
	return m
}

// Randomize fills the matrix with uniform values in (-0.5, 0.5)/dim,
// the word2vec input-layer initialization.
func (m Matrix) Randomize(r *rand.Rand) {
	for i := range m {
		row := m[i]
		dim := float32(len(row))
		for j := range row {
			row[j] = (r.Float32() - 0.5) / dim
		}
	}
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Dim returns the row width, 0 for an empty matrix.
func (m Matrix) Dim() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Normalize rescales every column to [0,1] with min-max normalization.
// A column whose values are all identical is left unchanged, avoiding a
// division by zero.
func (m Matrix) Normalize() {
	if len(m) == 0 {
		return
	}
	dim := len(m[0])

	minv := append([]float32(nil), m[0]...)
	maxv := append([]float32(nil), m[0]...)
	for _, row := range m[1:] {
		for j := 0; j < dim; j++ {
			if row[j] < minv[j] {
				minv[j] = row[j]
			}
			if row[j] > maxv[j] {
				maxv[j] = row[j]
			}
		}
	}

	for _, row := range m {
		for j := 0; j < dim; j++ {
			if maxv[j] != minv[j] {
				row[j] = (row[j] - minv[j]) / (maxv[j] - minv[j])
			}
		}
	}
}
