// Command nnkern-wasm builds the kernels as a WebAssembly reactor module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o nnkern.wasm ./cmd/nnkern-wasm
//
// Buffers passed to the kernels must live in the module's linear memory; a
// host gets them from alloc_f32 and alloc_i32 and returns them with free_buf.
package main

func main() {}
