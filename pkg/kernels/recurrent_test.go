package kernels

import (
	"math"
	"math/rand"
	"testing"
)

func TestGRUScalar(t *testing.T) {
	t.Parallel()
	// Wz Wr Wh | Uz Ur Uh | bz br bh
	weights := []float32{0.5, -0.3, 0.8, 0.2, 0.4, -0.6, 0.1, -0.2, 0.05}
	x, h0 := 0.7, -0.4
	input := []float32{float32(x)}
	h := []float32{float32(h0)}
	z, r, hPrev := make([]float32, 1), make([]float32, 1), make([]float32, 1)

	GRUStep(weights, input, h, z, r, hPrev, 1, 1, 1, 1)

	w := func(i int) float64 { return float64(weights[i]) }
	wantZ := sigmoid64(w(0)*x + w(3)*h0 + w(6))
	wantR := sigmoid64(w(1)*x + w(4)*h0 + w(7))
	cand := math.Tanh(w(2)*x + w(5)*(wantR*h0) + w(8))
	wantH := (1-wantZ)*h0 + wantZ*cand

	assertClose(t, "z", float64(z[0]), wantZ, 1e-5)
	assertClose(t, "r", float64(r[0]), wantR, 1e-5)
	assertClose(t, "h", float64(h[0]), wantH, 1e-5)
	if hPrev[0] != float32(h0) {
		t.Fatalf("h_prev = %v, want %v", hPrev[0], h0)
	}
}

func TestLSTMScalar(t *testing.T) {
	t.Parallel()
	// Wi Wf Wo Wg | Ui Uf Uo Ug | bi bf bo bg
	weights := []float32{0.3, -0.5, 0.9, 0.6, -0.2, 0.4, 0.1, -0.7, 0.05, 0.5, -0.1, 0.2}
	x, h0, c0 := -0.6, 0.25, 0.8
	input := []float32{float32(x)}
	h, c := []float32{float32(h0)}, []float32{float32(c0)}
	hPrev, cPrev := make([]float32, 1), make([]float32, 1)

	LSTMStep(weights, input, h, c, hPrev, cPrev, 1, 1, 1, 1)

	w := func(k int) float64 { return float64(weights[k]) }
	i := sigmoid64(w(0)*x + w(4)*h0 + w(8))
	f := sigmoid64(w(1)*x + w(5)*h0 + w(9))
	o := sigmoid64(w(2)*x + w(6)*h0 + w(10))
	g := math.Tanh(w(3)*x + w(7)*h0 + w(11))
	wantC := f*c0 + i*g
	wantH := o * math.Tanh(wantC)

	assertClose(t, "c", float64(c[0]), wantC, 1e-5)
	assertClose(t, "h", float64(h[0]), wantH, 1e-5)
	if hPrev[0] != float32(h0) || cPrev[0] != float32(c0) {
		t.Fatalf("snapshots = (%v, %v), want (%v, %v)", hPrev[0], cPrev[0], h0, c0)
	}
}

func TestRRUScalar(t *testing.T) {
	t.Parallel()
	// Wc Wr | Uc Ur | bc br
	weights := []float32{0.9, -0.4, 0.3, 0.7, -0.1, 0.2}
	x, h0 := 0.5, 0.3
	input := []float32{float32(x)}
	h := []float32{float32(h0)}
	hPrev := make([]float32, 1)

	RRUStep(weights, input, h, hPrev, 1, 1, 1, 1)

	w := func(k int) float64 { return float64(weights[k]) }
	cand := math.Tanh(w(0)*x + w(2)*h0 + w(4))
	gate := sigmoid64(w(1)*x + w(3)*h0 + w(5))
	wantH := (1-gate)*h0 + gate*cand

	assertClose(t, "h", float64(h[0]), wantH, 1e-5)
	if hPrev[0] != float32(h0) {
		t.Fatalf("h_prev = %v, want %v", hPrev[0], h0)
	}
}

// gruReference computes one GRU step for a single row in float64 from the
// pre-step state only.
func gruReference(p GRUParams, x, h []float32) []float64 {
	in, hidden := len(x), len(h)
	r := make([]float64, hidden)
	z := make([]float64, hidden)
	for j := range hidden {
		z[j] = sigmoid64(dot64(p.Wz[j*in:(j+1)*in], x) + dot64(p.Uz[j*hidden:(j+1)*hidden], h) + float64(p.Bz[j]))
		r[j] = sigmoid64(dot64(p.Wr[j*in:(j+1)*in], x) + dot64(p.Ur[j*hidden:(j+1)*hidden], h) + float64(p.Br[j]))
	}
	out := make([]float64, hidden)
	for j := range hidden {
		var u float64
		for k := range hidden {
			u += float64(p.Uh[j*hidden+k]) * r[k] * float64(h[k])
		}
		cand := math.Tanh(dot64(p.Wh[j*in:(j+1)*in], x) + u + float64(p.Bh[j]))
		out[j] = (1-z[j])*float64(h[j]) + z[j]*cand
	}
	return out
}

func TestGRUUsesPreStepState(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(31))
	const in, hidden, batch, stride = 3, 5, 2, 4
	weights := randSlice(rng, GRUWeightCount(in, hidden))
	input := randSlice(rng, stride*batch)
	h := randSlice(rng, hidden*batch)
	start := append([]float32(nil), h...)
	z := make([]float32, hidden*batch)
	r := make([]float32, hidden*batch)
	hPrev := make([]float32, hidden*batch)

	GRUStep(weights, input, h, z, r, hPrev, in, hidden, batch, stride)

	p := SplitGRU(weights, in, hidden)
	for b := range batch {
		x := input[b*stride : b*stride+in]
		want := gruReference(p, x, start[b*hidden:(b+1)*hidden])
		for j := range hidden {
			assertClose(t, "h", float64(h[b*hidden+j]), want[j], 1e-5)
			if hPrev[b*hidden+j] != start[b*hidden+j] {
				t.Fatalf("h_prev[%d] = %v, want %v", b*hidden+j, hPrev[b*hidden+j], start[b*hidden+j])
			}
			if g := z[b*hidden+j]; g <= 0 || g >= 1 {
				t.Fatalf("z[%d] = %v outside (0,1)", b*hidden+j, g)
			}
			if g := r[b*hidden+j]; g <= 0 || g >= 1 {
				t.Fatalf("r[%d] = %v outside (0,1)", b*hidden+j, g)
			}
		}
	}
}

func TestLSTMUsesPreStepState(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(32))
	const in, hidden, batch = 2, 3, 2
	weights := randSlice(rng, LSTMWeightCount(in, hidden))
	input := randSlice(rng, in*batch)
	h := randSlice(rng, hidden*batch)
	c := randSlice(rng, hidden*batch)
	h0 := append([]float32(nil), h...)
	c0 := append([]float32(nil), c...)
	hPrev := make([]float32, hidden*batch)
	cPrev := make([]float32, hidden*batch)

	LSTMStep(weights, input, h, c, hPrev, cPrev, in, hidden, batch, in)

	p := SplitLSTM(weights, in, hidden)
	for b := range batch {
		x := input[b*in : (b+1)*in]
		hp := h0[b*hidden : (b+1)*hidden]
		for j := range hidden {
			pre := func(w, u, bias []float32) float64 {
				return dot64(w[j*in:(j+1)*in], x) + dot64(u[j*hidden:(j+1)*hidden], hp) + float64(bias[j])
			}
			i := sigmoid64(pre(p.Wi, p.Ui, p.Bi))
			f := sigmoid64(pre(p.Wf, p.Uf, p.Bf))
			o := sigmoid64(pre(p.Wo, p.Uo, p.Bo))
			g := math.Tanh(pre(p.Wg, p.Ug, p.Bg))
			k := b*hidden + j
			wantC := f*float64(c0[k]) + i*g
			assertClose(t, "c", float64(c[k]), wantC, 1e-5)
			assertClose(t, "h", float64(h[k]), o*math.Tanh(wantC), 1e-5)
			if hPrev[k] != h0[k] || cPrev[k] != c0[k] {
				t.Fatalf("snapshot %d mismatch", k)
			}
		}
	}
}

func TestRecurrentNoop(t *testing.T) {
	t.Parallel()
	weights := filled(LSTMWeightCount(2, 2), 0.1)
	input := []float32{1, 2}

	tests := []struct {
		name  string
		w, x  []float32
		sizes [3]int
	}{
		{name: "nil weights", x: input, sizes: [3]int{2, 2, 1}},
		{name: "nil input", w: weights, sizes: [3]int{2, 2, 1}},
		{name: "zero in", w: weights, x: input, sizes: [3]int{0, 2, 1}},
		{name: "zero hidden", w: weights, x: input, sizes: [3]int{2, 0, 1}},
		{name: "negative batch", w: weights, x: input, sizes: [3]int{2, 2, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, hidden, batch := tt.sizes[0], tt.sizes[1], tt.sizes[2]
			bufs := func() [4][]float32 {
				return [4][]float32{filled(2, 42), filled(2, 42), filled(2, 42), filled(2, 42)}
			}

			g := bufs()
			GRUStep(tt.w, tt.x, g[0], g[1], g[2], g[3], in, hidden, batch, 2)
			for _, b := range g {
				assertUnchanged(t, "gru", b, 42)
			}

			l := bufs()
			LSTMStep(tt.w, tt.x, l[0], l[1], l[2], l[3], in, hidden, batch, 2)
			for _, b := range l {
				assertUnchanged(t, "lstm", b, 42)
			}

			rr := bufs()
			RRUStep(tt.w, tt.x, rr[0], rr[1], in, hidden, batch, 2)
			assertUnchanged(t, "rru h", rr[0], 42)
			assertUnchanged(t, "rru h_prev", rr[1], 42)
		})
	}
}

func TestRecurrentNilStateIsNoop(t *testing.T) {
	t.Parallel()
	weights := filled(GRUWeightCount(1, 1), 0.1)
	h := filled(1, 42)
	z := filled(1, 42)
	GRUStep(weights, []float32{1}, h, z, nil, filled(1, 42), 1, 1, 1, 1)
	assertUnchanged(t, "h", h, 42)
	assertUnchanged(t, "z", z, 42)
}

func TestRecurrentNoAllocs(t *testing.T) {
	rng := rand.New(rand.NewSource(33))
	const in, hidden, batch = 8, 16, 2
	weights := randSlice(rng, LSTMWeightCount(in, hidden))
	input := randSlice(rng, in*batch)
	a := make([]float32, hidden*batch)
	b := make([]float32, hidden*batch)
	c := make([]float32, hidden*batch)
	d := make([]float32, hidden*batch)
	allocs := testing.AllocsPerRun(20, func() {
		GRUStep(weights, input, a, b, c, d, in, hidden, batch, in)
		LSTMStep(weights, input, a, b, c, d, in, hidden, batch, in)
		RRUStep(weights, input, a, b, in, hidden, batch, in)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}

func BenchmarkGRUStep(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const in, hidden, batch = 64, 128, 8
	weights := randSlice(rng, GRUWeightCount(in, hidden))
	input := randSlice(rng, in*batch)
	h := make([]float32, hidden*batch)
	z := make([]float32, hidden*batch)
	r := make([]float32, hidden*batch)
	hPrev := make([]float32, hidden*batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GRUStep(weights, input, h, z, r, hPrev, in, hidden, batch, in)
	}
}

func BenchmarkLSTMStep(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const in, hidden, batch = 64, 128, 8
	weights := randSlice(rng, LSTMWeightCount(in, hidden))
	input := randSlice(rng, in*batch)
	h := make([]float32, hidden*batch)
	c := make([]float32, hidden*batch)
	hPrev := make([]float32, hidden*batch)
	cPrev := make([]float32, hidden*batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LSTMStep(weights, input, h, c, hPrev, cPrev, in, hidden, batch, in)
	}
}
