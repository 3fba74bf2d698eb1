package kernels

// Count clamps a caller-supplied dimension to a non-negative count.
func Count(v int) int {
	if v <= 0 {
		return 0
	}
	return v
}

// Span returns the number of elements a batch view of rows rows, each width
// wide and stride apart, reaches into its buffer. A zero width reaches
// nothing: the kernels do not read rows of zero width.
func Span(rows, stride, width int) int {
	rows, stride, width = Count(rows), Count(stride), Count(width)
	if rows == 0 || width == 0 {
		return 0
	}
	return (rows-1)*stride + width
}
