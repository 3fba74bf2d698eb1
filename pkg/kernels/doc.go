// Package kernels implements forward-pass inference kernels for Dense, MLP,
// GRU, LSTM and RRU layers over flat, caller-owned float32 buffers.
//
// Kernels hold no state between calls and never allocate long-lived memory.
// A nil slice stands for a null pointer: any nil buffer turns the call into a
// silent no-op, as do the degenerate shapes listed on each kernel. Buffer
// extents are trusted; a buffer shorter than the declared sizes imply makes
// the call panic on a bounds check. Use the Check functions on the host side
// to find out ahead of time which of the two would happen.
//
// Weight blobs are flat concatenations in a fixed per-kernel order, see the
// Split and WeightCount helpers in layout.go.
package kernels
