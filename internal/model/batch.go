package model

import "fmt"

// Batch is a row-major batch view: row i starts at i*Stride and holds Width
// values. Values between Width and Stride are padding.
type Batch struct {
	Rows   int
	Width  int
	Stride int
	Data   []float32
}

// NewBatch allocates a zeroed batch. A stride below width is raised to
// width.
func NewBatch(rows, width, stride int) Batch {
	stride = max(stride, width)
	return Batch{Rows: rows, Width: width, Stride: stride, Data: make([]float32, rows*stride)}
}

// BatchFromRows packs rows densely. Every row must be exactly width long.
func BatchFromRows(rows [][]float32, width int) (Batch, error) {
	b := NewBatch(len(rows), width, width)
	for i, r := range rows {
		if len(r) != width {
			return Batch{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(r), width)
		}
		copy(b.Row(i), r)
	}
	return b, nil
}

// Row returns the Width values of row i.
func (b Batch) Row(i int) []float32 {
	return b.Data[i*b.Stride : i*b.Stride+b.Width]
}

// Rows2D copies the batch into one slice per row, dropping padding.
func (b Batch) Rows2D() [][]float32 {
	out := make([][]float32, b.Rows)
	for i := range out {
		out[i] = append([]float32(nil), b.Row(i)...)
	}
	return out
}
