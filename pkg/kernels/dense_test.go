package kernels

import (
	"math"
	"math/rand"
	"testing"
)

func TestDenseSingleUnit(t *testing.T) {
	weights := []float32{1.0, 2.0, 0.5}
	input := []float32{3.0, 4.0}
	output := make([]float32, 1)

	DenseForward(weights, input, output, 2, 1, 1, 2, 1)

	want := float32(math.Tanh(11.5))
	if output[0] != want {
		t.Fatalf("dense: got %v want tanh(11.5)=%v", output[0], want)
	}
}

func TestDenseZeroesPadding(t *testing.T) {
	weights := []float32{
		0.1, -0.2, 0.05,
		0.3, 0.4, -0.1,
	}
	input := []float32{1, 2, 9, 9, -1, 0.5, 9, 9} // stride 4, width 2
	output := filled(2*5, 42)

	DenseForward(weights, input, output, 2, 2, 2, 4, 5)

	for b := range 2 {
		x := input[b*4 : b*4+2]
		for o := range 2 {
			w := weights[o*3 : o*3+3]
			want := math.Tanh(float64(w[0]*x[0]+w[1]*x[1]) + float64(w[2]))
			assertClose(t, "dense unit", float64(output[b*5+o]), want, 1e-6)
		}
		for o := 2; o < 5; o++ {
			if output[b*5+o] != 0 {
				t.Fatalf("row %d padding[%d] = %v, want exactly 0", b, o, output[b*5+o])
			}
		}
	}
}

func TestDenseOutputStrideClampsUnits(t *testing.T) {
	weights := []float32{
		1, 0,
		2, 0,
		3, 0,
	}
	input := []float32{0.1, 0.2}
	output := filled(2, 42)

	// Three units but a pitch of one: only unit 0 of each row is written.
	DenseForward(weights, input, output, 1, 3, 2, 1, 1)

	for b := range 2 {
		want := float32(math.Tanh(float64(input[b])))
		assertClose(t, "clamped unit", float64(output[b]), float64(want), 1e-6)
	}
}

func TestDenseNilIsNoop(t *testing.T) {
	weights := []float32{1, 2, 0.5}
	input := []float32{3, 4}
	tests := []struct {
		name  string
		w, in []float32
	}{
		{name: "nil weights", w: nil, in: input},
		{name: "nil input", w: weights, in: nil},
	}
	for _, tt := range tests {
		output := filled(3, 42)
		DenseForward(tt.w, tt.in, output, 2, 1, 1, 2, 3)
		assertUnchanged(t, tt.name, output, 42)
	}
	// A nil output must not panic.
	DenseForward(weights, input, nil, 2, 1, 1, 2, 3)
}

func TestDenseNegativeSizesAreEmpty(t *testing.T) {
	weights := []float32{1, 2, 0.5}
	input := []float32{3, 4}
	output := filled(3, 42)

	DenseForward(weights, input, output, 2, 1, -1, 2, 3)
	assertUnchanged(t, "negative batch", output, 42)

	// Negative out size computes nothing but still zeroes the row pitch.
	DenseForward(weights, input, output, 2, -5, 1, 2, 3)
	assertUnchanged(t, "negative out size", output, 0)
}

func TestDenseZeroInputWidthUsesBias(t *testing.T) {
	weights := []float32{0.25, -0.75}
	output := make([]float32, 2)

	DenseForward(weights, []float32{}, output, 0, 2, 1, 0, 2)

	assertClose(t, "bias only 0", float64(output[0]), math.Tanh(0.25), 1e-6)
	assertClose(t, "bias only 1", float64(output[1]), math.Tanh(-0.75), 1e-6)
}

func TestDenseZeroInputWidthStridedBatch(t *testing.T) {
	weights := []float32{0.25, -0.75}
	const batch, inStride, outStride = 3, 4, 3
	output := filled(batch*outStride, 9)

	DenseForward(weights, []float32{}, output, 0, 2, batch, inStride, outStride)

	for b := range batch {
		row := output[b*outStride : (b+1)*outStride]
		assertClose(t, "bias only 0", float64(row[0]), math.Tanh(0.25), 1e-6)
		assertClose(t, "bias only 1", float64(row[1]), math.Tanh(-0.75), 1e-6)
		if row[2] != 0 {
			t.Fatalf("row %d padding = %v, want 0", b, row[2])
		}
	}
}

func TestDenseIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	const in, out, batch = 13, 7, 3
	weights := randSlice(rng, DenseWeightCount(in, out))
	input := randSlice(rng, in*batch)

	first := make([]float32, out*batch)
	second := make([]float32, out*batch)
	DenseForward(weights, input, first, in, out, batch, in, out)
	DenseForward(weights, input, second, in, out, batch, in, out)

	for i := range first {
		if math.Float32bits(first[i]) != math.Float32bits(second[i]) {
			t.Fatalf("output[%d] differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDenseNoAllocs(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	weights := randSlice(rng, DenseWeightCount(16, 8))
	input := randSlice(rng, 16*4)
	output := make([]float32, 8*4)
	allocs := testing.AllocsPerRun(50, func() {
		DenseForward(weights, input, output, 16, 8, 4, 16, 8)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}

func BenchmarkDense256x256(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const in, out, batch = 256, 256, 8
	weights := randSlice(rng, DenseWeightCount(in, out))
	input := randSlice(rng, in*batch)
	output := make([]float32, out*batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DenseForward(weights, input, output, in, out, batch, in, out)
	}
}
