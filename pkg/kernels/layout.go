package kernels

// Gate counts of the recurrent layouts.
const (
	GRUGates  = 3
	LSTMGates = 4
	RRUGates  = 2
)

// DenseWeightCount is the blob length of one Dense layer: outSize rows of
// inSize weights followed by one bias.
func DenseWeightCount(inSize, outSize int) int {
	return Count(outSize) * (Count(inSize) + 1)
}

// MLPWeightCount is the blob length of an MLP: the Dense blocks of every
// adjacent layer pair, concatenated in layer order.
func MLPWeightCount(layerSizes []int) int {
	total := 0
	for l := 1; l < len(layerSizes); l++ {
		total += DenseWeightCount(layerSizes[l-1], layerSizes[l])
	}
	return total
}

// MLPScratchLen is the smallest scratch buffer MLPForward accepts.
func MLPScratchLen(layerSizes []int) int {
	return 2 * maxWidth(layerSizes)
}

// GRUWeightCount is the blob length of a GRU cell.
func GRUWeightCount(inSize, hiddenSize int) int {
	return gatedWeightCount(GRUGates, inSize, hiddenSize)
}

// LSTMWeightCount is the blob length of an LSTM cell.
func LSTMWeightCount(inSize, hiddenSize int) int {
	return gatedWeightCount(LSTMGates, inSize, hiddenSize)
}

// RRUWeightCount is the blob length of an RRU cell.
func RRUWeightCount(inSize, hiddenSize int) int {
	return gatedWeightCount(RRUGates, inSize, hiddenSize)
}

// gatedWeightCount covers the common recurrent layout: all input matrices,
// then all hidden matrices, then all biases.
func gatedWeightCount(gates, inSize, hiddenSize int) int {
	in, hidden := Count(inSize), Count(hiddenSize)
	return gates * hidden * (in + hidden + 1)
}

func maxWidth(layerSizes []int) int {
	m := 0
	for _, s := range layerSizes {
		m = max(m, Count(s))
	}
	return m
}

// GRUParams are views over a GRU blob. W* are hidden×in, U* hidden×hidden,
// B* hidden, all row-major.
type GRUParams struct {
	Wz, Wr, Wh []float32
	Uz, Ur, Uh []float32
	Bz, Br, Bh []float32
}

// LSTMParams are views over an LSTM blob, gates ordered input, forget,
// output, candidate.
type LSTMParams struct {
	Wi, Wf, Wo, Wg []float32
	Ui, Uf, Uo, Ug []float32
	Bi, Bf, Bo, Bg []float32
}

// RRUParams are views over an RRU blob.
type RRUParams struct {
	Wc, Wr []float32
	Uc, Ur []float32
	Bc, Br []float32
}

// SplitGRU slices blob into its GRU sections. It panics if blob is shorter
// than GRUWeightCount(inSize, hiddenSize).
func SplitGRU(blob []float32, inSize, hiddenSize int) GRUParams {
	w, u, b := splitGated(blob, GRUGates, inSize, hiddenSize)
	return GRUParams{
		Wz: w[0], Wr: w[1], Wh: w[2],
		Uz: u[0], Ur: u[1], Uh: u[2],
		Bz: b[0], Br: b[1], Bh: b[2],
	}
}

// SplitLSTM slices blob into its LSTM sections.
func SplitLSTM(blob []float32, inSize, hiddenSize int) LSTMParams {
	w, u, b := splitGated(blob, LSTMGates, inSize, hiddenSize)
	return LSTMParams{
		Wi: w[0], Wf: w[1], Wo: w[2], Wg: w[3],
		Ui: u[0], Uf: u[1], Uo: u[2], Ug: u[3],
		Bi: b[0], Bf: b[1], Bo: b[2], Bg: b[3],
	}
}

// SplitRRU slices blob into its RRU sections.
func SplitRRU(blob []float32, inSize, hiddenSize int) RRUParams {
	w, u, b := splitGated(blob, RRUGates, inSize, hiddenSize)
	return RRUParams{
		Wc: w[0], Wr: w[1],
		Uc: u[0], Ur: u[1],
		Bc: b[0], Br: b[1],
	}
}

// gateViews holds one view per gate; LSTM has the most gates.
type gateViews [LSTMGates][]float32

func splitGated(blob []float32, gates, inSize, hiddenSize int) (w, u, b gateViews) {
	in, hidden := Count(inSize), Count(hiddenSize)
	c := cursor{blob: blob}
	for g := range gates {
		w[g] = c.take(hidden * in)
	}
	for g := range gates {
		u[g] = c.take(hidden * hidden)
	}
	for g := range gates {
		b[g] = c.take(hidden)
	}
	return w, u, b
}

type cursor struct {
	blob []float32
	off  int
}

func (c *cursor) take(n int) []float32 {
	s := c.blob[c.off : c.off+n : c.off+n]
	c.off += n
	return s
}

// row returns row j of a row-major matrix width columns wide.
func row(m []float32, j, width int) []float32 {
	return m[j*width : (j+1)*width]
}
