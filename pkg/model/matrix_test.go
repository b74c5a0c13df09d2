package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatrixShape(t *testing.T) {
	m := NewMatrix(3, 4)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Dim())
	for _, row := range m {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
}

func TestRandomizeRange(t *testing.T) {
	m := NewMatrix(10, 20)
	m.Randomize(rand.New(rand.NewSource(42)))
	bound := float32(0.5) / 20
	for _, row := range m {
		for _, v := range row {
			assert.Less(t, v, bound)
			assert.GreaterOrEqual(t, v, -bound)
		}
	}
}

func TestNormalize(t *testing.T) {
	m := Matrix{
		{0, 10, 7},
		{5, 10, 7},
		{10, 10, 7},
	}
	m.Normalize()

	assert.InDelta(t, 0.0, m[0][0], 1e-6)
	assert.InDelta(t, 0.5, m[1][0], 1e-6)
	assert.InDelta(t, 1.0, m[2][0], 1e-6)

	// Constant columns are left unchanged, not divided by zero.
	for i := 0; i < 3; i++ {
		assert.Equal(t, float32(10), m[i][1])
		assert.Equal(t, float32(7), m[i][2])
	}
}

func TestNormalizeEmpty(t *testing.T) {
	var m Matrix
	m.Normalize() // must not panic
}
