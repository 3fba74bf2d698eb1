package kernels

// preact returns w_j·x + u_j·h + bias_j for hidden unit j.
func preact(w, u, bias []float32, j int, x, h []float32) float32 {
	in, hidden := len(x), len(h)
	return Dot(row(w, j, in), x, in) + Dot(row(u, j, hidden), h, hidden) + bias[j]
}

// blend returns (1-g)*prev + g*cand with each product rounded to float32.
func blend(prev, cand, g float32) float32 {
	return float32((1-g)*prev) + float32(g*cand)
}

// stateRow returns the hidden-wide slot of batch row b in a state buffer.
func stateRow(buf []float32, b, hidden int) []float32 {
	return buf[b*hidden : (b+1)*hidden]
}

// recurrentDims sanitizes the shared recurrent shape arguments and reports
// whether there is any work to do.
func recurrentDims(inSize, hiddenSize, batchCount, inputStride int) (in, hidden, batch, stride int, ok bool) {
	in, hidden, batch, stride = Count(inSize), Count(hiddenSize), Count(batchCount), Count(inputStride)
	return in, hidden, batch, stride, in != 0 && hidden != 0 && batch != 0
}
