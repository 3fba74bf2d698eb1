// Command nnkern-cabi builds the kernels as a C shared library:
//
//	go build -buildmode=c-shared -o libnnkern.so ./cmd/nnkern-cabi
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/samcharles93/nnkern/internal/abi"
	"github.com/samcharles93/nnkern/internal/version"
)

var versionString = C.CString(version.String())

//export nnkern_version
func nnkern_version() *C.char {
	return versionString
}

//export dense_forward
func dense_forward(weights, input, output *C.float, inSize, outSize, batchCount, inputStride, outputStride C.int) {
	abi.DenseForward(
		unsafe.Pointer(weights), unsafe.Pointer(input), unsafe.Pointer(output),
		int32(inSize), int32(outSize), int32(batchCount), int32(inputStride), int32(outputStride),
	)
}

//export mlp_forward
func mlp_forward(weights *C.float, layerSizes *C.int, layerCount C.int, input, output, scratch *C.float, scratchLen, batchCount, inputStride, outputStride C.int) {
	abi.MLPForward(
		unsafe.Pointer(weights), (*int32)(unsafe.Pointer(layerSizes)), int32(layerCount),
		unsafe.Pointer(input), unsafe.Pointer(output), unsafe.Pointer(scratch),
		int32(scratchLen), int32(batchCount), int32(inputStride), int32(outputStride),
	)
}

//export gru_step
func gru_step(weights, input, h, z, r, hPrev *C.float, inSize, hiddenSize, batchCount, inputStride C.int) {
	abi.GRUStep(
		unsafe.Pointer(weights), unsafe.Pointer(input),
		unsafe.Pointer(h), unsafe.Pointer(z), unsafe.Pointer(r), unsafe.Pointer(hPrev),
		int32(inSize), int32(hiddenSize), int32(batchCount), int32(inputStride),
	)
}

//export lstm_step
func lstm_step(weights, input, h, c, hPrev, cPrev *C.float, inSize, hiddenSize, batchCount, inputStride C.int) {
	abi.LSTMStep(
		unsafe.Pointer(weights), unsafe.Pointer(input),
		unsafe.Pointer(h), unsafe.Pointer(c), unsafe.Pointer(hPrev), unsafe.Pointer(cPrev),
		int32(inSize), int32(hiddenSize), int32(batchCount), int32(inputStride),
	)
}

//export rru_step
func rru_step(weights, input, h, hPrev *C.float, inSize, hiddenSize, batchCount, inputStride C.int) {
	abi.RRUStep(
		unsafe.Pointer(weights), unsafe.Pointer(input), unsafe.Pointer(h), unsafe.Pointer(hPrev),
		int32(inSize), int32(hiddenSize), int32(batchCount), int32(inputStride),
	)
}

func main() {}
