package kernels

// GRUStep advances a GRU cell by one step for every batch row.
//
// h holds the current hidden state (hiddenSize per row) and is overwritten
// with the new state. z, r and hPrev receive the update gate, the reset gate
// and the pre-step hidden state. All four are hiddenSize*batchCount long.
// Row b of input starts at b*inputStride. The blob layout is described by
// SplitGRU.
//
// The call is a no-op when any buffer is nil or inSize, hiddenSize or
// batchCount is zero.
func GRUStep(weights, input, h, z, r, hPrev []float32, inSize, hiddenSize, batchCount, inputStride int) {
	if weights == nil || input == nil || h == nil || z == nil || r == nil || hPrev == nil {
		return
	}
	in, hidden, batch, stride, ok := recurrentDims(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	p := SplitGRU(weights, in, hidden)

	for b := range batch {
		x := input[b*stride : b*stride+in]
		hb := stateRow(h, b, hidden)
		zb := stateRow(z, b, hidden)
		rb := stateRow(r, b, hidden)
		prev := stateRow(hPrev, b, hidden)
		copy(prev, hb)

		// The candidate of every unit reads the whole reset vector.
		for j := range hidden {
			zb[j] = Sigmoid(preact(p.Wz, p.Uz, p.Bz, j, x, prev))
			rb[j] = Sigmoid(preact(p.Wr, p.Ur, p.Br, j, x, prev))
		}
		for j := range hidden {
			cand := Tanh(Dot(row(p.Wh, j, in), x, in) + DotMul(row(p.Uh, j, hidden), rb, prev, hidden) + p.Bh[j])
			hb[j] = blend(prev[j], cand, zb[j])
		}
	}
}
