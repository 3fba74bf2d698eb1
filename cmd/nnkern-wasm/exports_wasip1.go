//go:build wasip1

package main

import (
	"unsafe"

	"github.com/samcharles93/nnkern/internal/abi"
)

var pins abi.Pins

//go:wasmexport alloc_f32
func allocF32(n int32) unsafe.Pointer {
	return pins.AllocF32(n)
}

//go:wasmexport alloc_i32
func allocI32(n int32) unsafe.Pointer {
	return pins.AllocI32(n)
}

//go:wasmexport free_buf
func freeBuf(p unsafe.Pointer) {
	pins.Free(p)
}

//go:wasmexport dense_forward
func denseForward(weights, input, output unsafe.Pointer, inSize, outSize, batchCount, inputStride, outputStride int32) {
	abi.DenseForward(weights, input, output, inSize, outSize, batchCount, inputStride, outputStride)
}

//go:wasmexport mlp_forward
func mlpForward(weights, layerSizes unsafe.Pointer, layerCount int32, input, output, scratch unsafe.Pointer, scratchLen, batchCount, inputStride, outputStride int32) {
	abi.MLPForward(weights, (*int32)(layerSizes), layerCount, input, output, scratch, scratchLen, batchCount, inputStride, outputStride)
}

//go:wasmexport gru_step
func gruStep(weights, input, h, z, r, hPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	abi.GRUStep(weights, input, h, z, r, hPrev, inSize, hiddenSize, batchCount, inputStride)
}

//go:wasmexport lstm_step
func lstmStep(weights, input, h, c, hPrev, cPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	abi.LSTMStep(weights, input, h, c, hPrev, cPrev, inSize, hiddenSize, batchCount, inputStride)
}

//go:wasmexport rru_step
func rruStep(weights, input, h, hPrev unsafe.Pointer, inSize, hiddenSize, batchCount, inputStride int32) {
	abi.RRUStep(weights, input, h, hPrev, inSize, hiddenSize, batchCount, inputStride)
}
