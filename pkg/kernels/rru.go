package kernels

// RRUStep advances the two-gate RRU cell by one step for every batch row.
//
// h is overwritten with the new hidden state and hPrev receives the pre-step
// copy, both hiddenSize*batchCount long. Per unit j:
//
//	cand = tanh(Wc_j·x + Uc_j·h_prev + bc_j)
//	gate = sigmoid(Wr_j·x + Ur_j·h_prev + br_j)
//	h_j  = (1-gate)*h_prev_j + gate*cand
//
// The call is a no-op when any buffer is nil or inSize, hiddenSize or
// batchCount is zero.
func RRUStep(weights, input, h, hPrev []float32, inSize, hiddenSize, batchCount, inputStride int) {
	if weights == nil || input == nil || h == nil || hPrev == nil {
		return
	}
	in, hidden, batch, stride, ok := recurrentDims(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	p := SplitRRU(weights, in, hidden)

	for b := range batch {
		x := input[b*stride : b*stride+in]
		hb := stateRow(h, b, hidden)
		prev := stateRow(hPrev, b, hidden)
		copy(prev, hb)

		for j := range hidden {
			cand := Tanh(preact(p.Wc, p.Uc, p.Bc, j, x, prev))
			gate := Sigmoid(preact(p.Wr, p.Ur, p.Br, j, x, prev))
			hb[j] = blend(prev[j], cand, gate)
		}
	}
}
