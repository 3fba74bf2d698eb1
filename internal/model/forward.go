package model

import (
	"errors"
	"fmt"

	"github.com/samcharles93/nnkern/pkg/kernels"
)

var ErrWrongKind = errors.New("operation not supported by model kind")

// Forward runs a Dense or MLP model over in. outStride is the row pitch of
// the result; zero or less means the output width. When outStride is below
// the output width only the first outStride units of each row are produced.
func (m *Model) Forward(in Batch, outStride int) (Batch, error) {
	if m.Kind != KindDense && m.Kind != KindMLP {
		return Batch{}, fmt.Errorf("%w: forward on %s", ErrWrongKind, m.Kind)
	}
	if in.Width != m.InputWidth() {
		return Batch{}, fmt.Errorf("%w: input rows have %d values, %s expects %d", ErrShape, in.Width, m.Name, m.InputWidth())
	}
	width := m.OutputWidth()
	if outStride <= 0 {
		outStride = width
	}
	out := Batch{
		Rows:   in.Rows,
		Width:  min(width, outStride),
		Stride: outStride,
		Data:   make([]float32, in.Rows*outStride),
	}

	switch m.Kind {
	case KindDense:
		if err := kernels.CheckDense(m.Weights, in.Data, out.Data, m.InSize, m.OutSize, in.Rows, in.Stride, outStride); err != nil {
			return Batch{}, err
		}
		kernels.DenseForward(m.Weights, in.Data, out.Data, m.InSize, m.OutSize, in.Rows, in.Stride, outStride)
	case KindMLP:
		scratch := make([]float32, kernels.MLPScratchLen(m.LayerSizes))
		if err := kernels.CheckMLP(m.Weights, m.LayerSizes, in.Data, out.Data, scratch, in.Rows, in.Stride, outStride); err != nil {
			return Batch{}, err
		}
		kernels.MLPForward(m.Weights, m.LayerSizes, in.Data, out.Data, scratch, in.Rows, in.Stride, outStride)
	}
	return out, nil
}
