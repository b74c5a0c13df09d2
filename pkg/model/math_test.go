package model

import (
	"math"
	"testing"
)

func TestSigmoidAtZero(t *testing.T) {
	if got := Sigmoid(0); got != 0.5 {
		t.Fatalf("sigmoid(0) = %g, want 0.5", got)
	}
}

func TestSigmoidMatchesDefinition(t *testing.T) {
	for _, x := range []float32{-5.9, -3, -0.5, 0.1, 2, 5.9} {
		want := float32(1 / (1 + math.Exp(-float64(x))))
		got := Sigmoid(x)
		if math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("sigmoid(%g) = %g, want %g", x, got, want)
		}
	}
}

func TestSigmoidPanicsOutOfBounds(t *testing.T) {
	for _, x := range []float32{6, -6, 100, float32(math.Inf(1))} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("sigmoid(%g) must panic", x)
				}
			}()
			Sigmoid(x)
		}()
	}
}

func TestBlasHelpers(t *testing.T) {
	x := []float32{1, 2, 3}
	y := []float32{4, 5, 6}

	if got := dot(x, y); got != 32 {
		t.Errorf("dot = %g, want 32", got)
	}

	axpy(2, x, y)
	want := []float32{6, 9, 12}
	for i := range want {
		if y[i] != want[i] {
			t.Errorf("axpy[%d] = %g, want %g", i, y[i], want[i])
		}
	}

	scal(0.5, y)
	want = []float32{3, 4.5, 6}
	for i := range want {
		if y[i] != want[i] {
			t.Errorf("scal[%d] = %g, want %g", i, y[i], want[i])
		}
	}
}
