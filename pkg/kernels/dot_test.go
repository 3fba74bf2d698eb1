package kernels

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

func TestDotMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{0, 1, 3, 4, 5, 17} {
		w := randSlice(rng, n)
		x := randSlice(rng, n)

		got := Dot(w, x, n)
		assertClose(t, "dot vs float64", float64(got), dot64(w, x), 1e-5)

		oracle := blas32.Dot(blas32.Vector{N: n, Inc: 1, Data: w}, blas32.Vector{N: n, Inc: 1, Data: x})
		assertClose(t, "dot vs blas32", float64(got), float64(oracle), 1e-5)
	}
}

func TestDotMulMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, n := range []int{0, 1, 3, 4, 5, 17} {
		w := randSlice(rng, n)
		a := randSlice(rng, n)
		b := randSlice(rng, n)
		var want float64
		for i := range n {
			want += float64(w[i]) * float64(a[i]) * float64(b[i])
		}
		assertClose(t, "dot_mul", float64(DotMul(w, a, b, n)), want, 1e-5)
	}
}

func TestDotReductionOrder(t *testing.T) {
	w := []float32{1e8, 1, -1e8, 1, 3, 0.5, 0.25, 2, 7}
	x := []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}
	// Lanes: {1e8+3, 1+0.5, -1e8+0.25, 1+2}, folded in order, then the tail.
	lanes := [Lanes]float32{
		float32(1e8) + 3,
		1 + 0.5,
		float32(-1e8) + 0.25,
		1 + 2,
	}
	want := ((lanes[0] + lanes[1]) + lanes[2]) + lanes[3] + 7
	if got := Dot(w, x, len(w)); got != want {
		t.Fatalf("dot order: got %v want %v", got, want)
	}
}

func TestDotPathsBitIdentical(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := range 40 {
		w := randSlice(rng, n)
		a := randSlice(rng, n)
		b := randSlice(rng, n)
		if got, want := Dot(w, a, n), dotLanes(w, a); math.Float32bits(got) != math.Float32bits(want) {
			t.Fatalf("n=%d path %s: dot %v != generic %v", n, Path(), got, want)
		}
		if got, want := DotMul(w, a, b, n), dotMulLanes(w, a, b); math.Float32bits(got) != math.Float32bits(want) {
			t.Fatalf("n=%d path %s: dot_mul %v != generic %v", n, Path(), got, want)
		}
	}
}

func TestDotPrefixAndNegative(t *testing.T) {
	w := []float32{1, 2, 3, 4, 5}
	x := []float32{1, 1, 1, 1, 1}
	if got := Dot(w, x, 3); got != 6 {
		t.Fatalf("dot prefix: got %v want 6", got)
	}
	if got := Dot(w, x, -2); got != 0 {
		t.Fatalf("dot negative n: got %v want 0", got)
	}
	if got := DotMul(w, x, x, 0); got != 0 {
		t.Fatalf("dot_mul zero n: got %v want 0", got)
	}
}

func TestDotShortBufferPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a bounds panic for n beyond the buffers")
		}
	}()
	Dot([]float32{1, 2}, []float32{1, 2}, 3)
}

func TestActivations(t *testing.T) {
	for _, x := range []float32{-20, -2, -0.5, 0, 0.5, 2, 20} {
		assertClose(t, "tanh", float64(Tanh(x)), math.Tanh(float64(x)), 1e-6)
		assertClose(t, "sigmoid", float64(Sigmoid(x)), sigmoid64(float64(x)), 1e-6)
	}
	if got := Sigmoid(-200); got != 0 {
		t.Fatalf("sigmoid(-200) = %v, want saturation to 0", got)
	}
	if got := Sigmoid(200); got != 1 {
		t.Fatalf("sigmoid(200) = %v, want saturation to 1", got)
	}
}

func BenchmarkDot256(b *testing.B)  { benchDot(b, 256) }
func BenchmarkDot4096(b *testing.B) { benchDot(b, 4096) }

func benchDot(b *testing.B, n int) {
	rng := rand.New(rand.NewSource(1))
	w := randSlice(rng, n)
	x := randSlice(rng, n)
	var sink float32
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink += Dot(w, x, n)
	}
	_ = sink
}
