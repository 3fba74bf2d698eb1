package kernels

// LSTMStep advances an LSTM cell by one step for every batch row.
//
// h and c hold the current hidden and cell state and are overwritten with
// the new state; hPrev and cPrev receive the pre-step copies. All four are
// hiddenSize*batchCount long. Gate activations are not exposed. The blob
// layout is described by SplitLSTM.
//
// The call is a no-op when any buffer is nil or inSize, hiddenSize or
// batchCount is zero.
func LSTMStep(weights, input, h, c, hPrev, cPrev []float32, inSize, hiddenSize, batchCount, inputStride int) {
	if weights == nil || input == nil || h == nil || c == nil || hPrev == nil || cPrev == nil {
		return
	}
	in, hidden, batch, stride, ok := recurrentDims(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	p := SplitLSTM(weights, in, hidden)

	for b := range batch {
		x := input[b*stride : b*stride+in]
		hb, cb := stateRow(h, b, hidden), stateRow(c, b, hidden)
		hp, cp := stateRow(hPrev, b, hidden), stateRow(cPrev, b, hidden)
		copy(hp, hb)
		copy(cp, cb)

		for j := range hidden {
			i := Sigmoid(preact(p.Wi, p.Ui, p.Bi, j, x, hp))
			f := Sigmoid(preact(p.Wf, p.Uf, p.Bf, j, x, hp))
			o := Sigmoid(preact(p.Wo, p.Uo, p.Bo, j, x, hp))
			g := Tanh(preact(p.Wg, p.Ug, p.Bg, j, x, hp))
			cb[j] = float32(f*cp[j]) + float32(i*g)
			hb[j] = o * Tanh(cb[j])
		}
	}
}
