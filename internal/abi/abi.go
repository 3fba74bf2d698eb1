// Package abi adapts the pointer-and-int32 calling convention of the C and
// WebAssembly exports to the slice-based kernels.
//
// Every entry point returns before touching memory when a pointer is nil or
// the shape is degenerate. Otherwise each buffer is viewed with exactly the
// extent the kernel reads or writes, so a caller honouring the documented
// sizes is never read past.
package abi

import (
	"unsafe"

	"github.com/samcharles93/nnkern/pkg/kernels"
)

// maxStackLayers is the number of MLP layer sizes converted without
// allocating.
const maxStackLayers = 32

func count(v int32) int {
	return kernels.Count(int(v))
}

func floats(p unsafe.Pointer, n int) []float32 {
	return unsafe.Slice((*float32)(p), n)
}

// DenseForward is the dense_forward entry point.
func DenseForward(weights, input, output unsafe.Pointer, inSize, outSize, batchCount, inputStride, outputStride int32) {
	if weights == nil || input == nil || output == nil {
		return
	}
	in, out, batch := count(inSize), count(outSize), count(batchCount)
	is, os := count(inputStride), count(outputStride)
	if batch == 0 {
		return
	}
	outLimit := min(out, os)
	kernels.DenseForward(
		floats(weights, kernels.DenseWeightCount(in, outLimit)),
		floats(input, kernels.Span(batch, is, in)),
		floats(output, batch*os),
		in, out, batch, is, os,
	)
}

// MLPForward is the mlp_forward entry point. layerSizes points at layerCount
// int32 widths.
func MLPForward(weights unsafe.Pointer, layerSizes *int32, layerCount int32, input, output, scratch unsafe.Pointer, scratchLen, batchCount, inputStride, outputStride int32) {
	if weights == nil || layerSizes == nil || input == nil || output == nil || scratch == nil {
		return
	}
	n := count(layerCount)
	if n < 2 {
		return
	}
	var stack [maxStackLayers]int
	var sizes []int
	if n <= maxStackLayers {
		sizes = stack[:n]
	} else {
		sizes = make([]int, n)
	}
	for i, s := range unsafe.Slice(layerSizes, n) {
		sizes[i] = int(s)
	}
	scratchN := count(scratchLen)
	if scratchN < kernels.MLPScratchLen(sizes) || kernels.MLPScratchLen(sizes) == 0 {
		return
	}
	batch := count(batchCount)
	is, os := count(inputStride), count(outputStride)
	if batch == 0 {
		return
	}
	kernels.MLPForward(
		floats(weights, kernels.MLPWeightCount(sizes)),
		sizes,
		floats(input, kernels.Span(batch, is, sizes[0])),
		floats(output, batch*os),
		floats(scratch, scratchN),
		batch, is, os,
	)
}

type recurrentShape struct {
	in, hidden, batch, stride int
}

func newRecurrentShape(inSize, hiddenSize, batchCount, inputStride int32) (recurrentShape, bool) {
	s := recurrentShape{count(inSize), count(hiddenSize), count(batchCount), count(inputStride)}
	return s, s.in != 0 && s.hidden != 0 && s.batch != 0
}

func (s recurrentShape) input(p unsafe.Pointer) []float32 {
	return floats(p, kernels.Span(s.batch, s.stride, s.in))
}

func (s recurrentShape) state(p unsafe.Pointer) []float32 {
	return floats(p, s.hidden*s.batch)
}

// GRUStep is the gru_step entry point.
func GRUStep(weights, input, h, z, r, hPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	if weights == nil || input == nil || h == nil || z == nil || r == nil || hPrev == nil {
		return
	}
	s, ok := newRecurrentShape(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	kernels.GRUStep(
		floats(weights, kernels.GRUWeightCount(s.in, s.hidden)),
		s.input(input), s.state(h), s.state(z), s.state(r), s.state(hPrev),
		s.in, s.hidden, s.batch, s.stride,
	)
}

// LSTMStep is the lstm_step entry point.
func LSTMStep(weights, input, h, c, hPrev, cPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	if weights == nil || input == nil || h == nil || c == nil || hPrev == nil || cPrev == nil {
		return
	}
	s, ok := newRecurrentShape(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	kernels.LSTMStep(
		floats(weights, kernels.LSTMWeightCount(s.in, s.hidden)),
		s.input(input), s.state(h), s.state(c), s.state(hPrev), s.state(cPrev),
		s.in, s.hidden, s.batch, s.stride,
	)
}

// RRUStep is the rru_step entry point.
func RRUStep(weights, input, h, hPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	if weights == nil || input == nil || h == nil || hPrev == nil {
		return
	}
	s, ok := newRecurrentShape(inSize, hiddenSize, batchCount, inputStride)
	if !ok {
		return
	}
	kernels.RRUStep(
		floats(weights, kernels.RRUWeightCount(s.in, s.hidden)),
		s.input(input), s.state(h), s.state(hPrev),
		s.in, s.hidden, s.batch, s.stride,
	)
}
