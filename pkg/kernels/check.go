package kernels

import (
	"errors"
	"fmt"
)

// Check errors. The kernels never return these; the Check functions let a
// host learn before a call whether it would be a silent no-op (ErrNilBuffer,
// ErrDegenerateShape) or overrun a buffer (ErrShortBuffer). A short MLP
// scratch buffer is reported as ErrShortBuffer but makes the call a no-op.
var (
	ErrNilBuffer       = errors.New("nil buffer")
	ErrDegenerateShape = errors.New("degenerate shape")
	ErrShortBuffer     = errors.New("buffer too short")
)

// ShapeError describes the first problem a Check function found.
type ShapeError struct {
	Kernel string
	Buffer string
	Need   int
	Have   int
	err    error
}

func (e *ShapeError) Error() string {
	switch {
	case errors.Is(e.err, ErrShortBuffer):
		return fmt.Sprintf("%s: %s: %v: need %d, have %d", e.Kernel, e.Buffer, e.err, e.Need, e.Have)
	case e.Buffer != "":
		return fmt.Sprintf("%s: %s: %v", e.Kernel, e.Buffer, e.err)
	default:
		return fmt.Sprintf("%s: %v", e.Kernel, e.err)
	}
}

func (e *ShapeError) Unwrap() error {
	return e.err
}

type buffer struct {
	name string
	data []float32
	need int
}

func checkNil(kernel string, bufs []buffer) error {
	for _, b := range bufs {
		if b.data == nil {
			return &ShapeError{Kernel: kernel, Buffer: b.name, err: ErrNilBuffer}
		}
	}
	return nil
}

func checkLen(kernel string, bufs []buffer) error {
	for _, b := range bufs {
		if len(b.data) < b.need {
			return &ShapeError{Kernel: kernel, Buffer: b.name, Need: b.need, Have: len(b.data), err: ErrShortBuffer}
		}
	}
	return nil
}

func degenerate(kernel, what string) error {
	return &ShapeError{Kernel: kernel, Buffer: what, err: ErrDegenerateShape}
}

// CheckDense validates a DenseForward call.
func CheckDense(weights, input, output []float32, inSize, outSize, batchCount, inputStride, outputStride int) error {
	outLimit := min(Count(outSize), Count(outputStride))
	rows := Count(batchCount)
	bufs := []buffer{
		{"weights", weights, DenseWeightCount(inSize, outLimit) * min(rows, 1)},
		{"input", input, Span(rows, inputStride, inSize)},
		{"output", output, rows * Count(outputStride)},
	}
	if err := checkNil("dense", bufs); err != nil {
		return err
	}
	return checkLen("dense", bufs)
}

// CheckMLP validates an MLPForward call.
func CheckMLP(weights []float32, layerSizes []int, input, output, scratch []float32, batchCount, inputStride, outputStride int) error {
	const kernel = "mlp"
	if layerSizes == nil {
		return &ShapeError{Kernel: kernel, Buffer: "layer_sizes", err: ErrNilBuffer}
	}
	rows := Count(batchCount)
	bufs := []buffer{
		{"weights", weights, 0},
		{"input", input, 0},
		{"output", output, rows * Count(outputStride)},
		{"scratch", scratch, 0},
	}
	if err := checkNil(kernel, bufs); err != nil {
		return err
	}
	if len(layerSizes) < 2 || maxWidth(layerSizes) == 0 {
		return degenerate(kernel, "layer_sizes")
	}
	bufs[0].need = MLPWeightCount(layerSizes) * min(rows, 1)
	bufs[1].need = Span(rows, inputStride, layerSizes[0])
	bufs[3].need = MLPScratchLen(layerSizes)
	return checkLen(kernel, bufs)
}

// CheckGRU validates a GRUStep call.
func CheckGRU(weights, input, h, z, r, hPrev []float32, inSize, hiddenSize, batchCount, inputStride int) error {
	state := Count(hiddenSize) * Count(batchCount)
	bufs := []buffer{
		{"weights", weights, GRUWeightCount(inSize, hiddenSize)},
		{"input", input, Span(batchCount, inputStride, inSize)},
		{"h", h, state},
		{"z", z, state},
		{"r", r, state},
		{"h_prev", hPrev, state},
	}
	if err := checkNil("gru", bufs); err != nil {
		return err
	}
	if err := checkRecurrentDims("gru", inSize, hiddenSize, batchCount); err != nil {
		return err
	}
	return checkLen("gru", bufs)
}

// CheckLSTM validates an LSTMStep call.
func CheckLSTM(weights, input, h, c, hPrev, cPrev []float32, inSize, hiddenSize, batchCount, inputStride int) error {
	state := Count(hiddenSize) * Count(batchCount)
	bufs := []buffer{
		{"weights", weights, LSTMWeightCount(inSize, hiddenSize)},
		{"input", input, Span(batchCount, inputStride, inSize)},
		{"h", h, state},
		{"c", c, state},
		{"h_prev", hPrev, state},
		{"c_prev", cPrev, state},
	}
	if err := checkNil("lstm", bufs); err != nil {
		return err
	}
	if err := checkRecurrentDims("lstm", inSize, hiddenSize, batchCount); err != nil {
		return err
	}
	return checkLen("lstm", bufs)
}

// CheckRRU validates an RRUStep call.
func CheckRRU(weights, input, h, hPrev []float32, inSize, hiddenSize, batchCount, inputStride int) error {
	state := Count(hiddenSize) * Count(batchCount)
	bufs := []buffer{
		{"weights", weights, RRUWeightCount(inSize, hiddenSize)},
		{"input", input, Span(batchCount, inputStride, inSize)},
		{"h", h, state},
		{"h_prev", hPrev, state},
	}
	if err := checkNil("rru", bufs); err != nil {
		return err
	}
	if err := checkRecurrentDims("rru", inSize, hiddenSize, batchCount); err != nil {
		return err
	}
	return checkLen("rru", bufs)
}

func checkRecurrentDims(kernel string, inSize, hiddenSize, batchCount int) error {
	switch {
	case Count(inSize) == 0:
		return degenerate(kernel, "in_size")
	case Count(hiddenSize) == 0:
		return degenerate(kernel, "hidden_size")
	case Count(batchCount) == 0:
		return degenerate(kernel, "batch_count")
	}
	return nil
}
