package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/gonum"
)

// MaxExp bounds the sigmoid argument. A dot product outside (-6, 6)
// means the weights have diverged, so Sigmoid panics rather than
// saturating.
const MaxExp = 6

// blasEngine provides the float32 BLAS kernels (dot, axpy, scal) used
// on the training hot path. Gonum handles SIMD dispatch internally.
var blasEngine = gonum.Implementation{}

// Sigmoid is the logistic function, defined only on (-MaxExp, MaxExp).
func Sigmoid(x float32) float32 {
	if x <= -MaxExp || x >= MaxExp {
		panic(fmt.Sprintf("sigmoid: argument %g out of (-%d, %d), training diverged", x, MaxExp, MaxExp))
	}
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// dot returns x·y for equal-length float32 vectors.
func dot(x, y []float32) float32 {
	return blasEngine.Sdot(len(x), x, 1, y, 1)
}

// axpy computes y += a*x in place.
func axpy(a float32, x, y []float32) {
	blasEngine.Saxpy(len(x), a, x, 1, y, 1)
}

// scal computes x *= a in place.
func scal(a float32, x []float32) {
	blasEngine.Sscal(len(x), a, x, 1)
}
