package kernels

// DenseForward runs one fully-connected tanh layer over batchCount rows.
//
// weights holds outSize rows of inSize weights followed by their bias. Row b
// of input starts at b*inputStride and row b of output at b*outputStride.
// The whole outputStride span of each output row is zeroed first, then the
// first min(outSize, outputStride) units are written. With inSize zero the
// input is never read and each unit is tanh of its bias. A nil buffer makes
// the call a no-op.
func DenseForward(weights, input, output []float32, inSize, outSize, batchCount, inputStride, outputStride int) {
	if weights == nil || input == nil || output == nil {
		return
	}
	inSize, outSize = Count(inSize), Count(outSize)
	batchCount = Count(batchCount)
	inputStride, outputStride = Count(inputStride), Count(outputStride)
	outLimit := min(outSize, outputStride)

	for b := range batchCount {
		out := output[b*outputStride : (b+1)*outputStride]
		clear(out)
		x := input[:0]
		if inSize > 0 {
			x = input[b*inputStride : b*inputStride+inSize]
		}
		denseRows(out[:outLimit], weights, x)
	}
}

// denseRows writes dst[o] = tanh(w_o·x + bias_o) where the rows of weights
// are len(x) weights followed by a bias.
func denseRows(dst, weights, x []float32) {
	n := len(x)
	for o := range dst {
		w := row(weights, o, n+1)
		dst[o] = Tanh(Dot(w, x, n) + w[n])
	}
}
