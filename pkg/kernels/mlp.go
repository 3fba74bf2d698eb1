package kernels

// MLPForward runs a stack of tanh Dense layers over batchCount rows.
//
// layerSizes lists the widths from input to output; weights is the Dense
// blocks of each adjacent pair in order. scratch is split into two halves of
// max(layerSizes) floats that take turns as the current and next activation
// vector, so the call allocates nothing. Output rows are zero padded to
// outputStride exactly like DenseForward.
//
// The call is a no-op when any buffer is nil, there are fewer than two
// layers, every width is zero, or scratch is shorter than MLPScratchLen.
func MLPForward(weights []float32, layerSizes []int, input, output, scratch []float32, batchCount, inputStride, outputStride int) {
	if weights == nil || layerSizes == nil || input == nil || output == nil || scratch == nil {
		return
	}
	if len(layerSizes) < 2 {
		return
	}
	width := maxWidth(layerSizes)
	if width == 0 || len(scratch) < 2*width {
		return
	}
	batchCount = Count(batchCount)
	inputStride, outputStride = Count(inputStride), Count(outputStride)

	inWidth := Count(layerSizes[0])
	outLimit := min(Count(layerSizes[len(layerSizes)-1]), outputStride)
	cur, next := scratch[:width], scratch[width:2*width]

	for b := range batchCount {
		if inWidth > 0 {
			base := b * inputStride
			copy(cur, input[base:base+inWidth])
		}

		w := weights
		for l := 1; l < len(layerSizes); l++ {
			ins, outs := Count(layerSizes[l-1]), Count(layerSizes[l])
			n := DenseWeightCount(ins, outs)
			denseRows(next[:outs], w[:n], cur[:ins])
			w = w[n:]
			cur, next = next, cur
		}

		out := output[b*outputStride : (b+1)*outputStride]
		clear(out)
		copy(out[:outLimit], cur[:outLimit])
	}
}
