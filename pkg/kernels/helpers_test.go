package kernels

import (
	"math"
	"math/rand"
	"testing"
)

func randSlice(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = (rng.Float32() - 0.5) * 2
	}
	return out
}

func filled(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func assertClose(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s: got %v want %v (tol %v)", what, got, want, tol)
	}
}

func assertUnchanged(t *testing.T, what string, buf []float32, v float32) {
	t.Helper()
	for i, x := range buf {
		if x != v {
			t.Fatalf("%s[%d] = %v, want untouched %v", what, i, x, v)
		}
	}
}

func sigmoid64(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func dot64(w, x []float32) float64 {
	var s float64
	for i := range w {
		s += float64(w[i]) * float64(x[i])
	}
	return s
}
