package abi

import (
	"sync"
	"unsafe"
)

// Pins keeps buffers handed out to a foreign host reachable until the host
// frees them. The zero value is ready to use.
type Pins struct {
	mu   sync.Mutex
	bufs map[uintptr]any
}

// AllocF32 returns a zeroed buffer of n float32 values, or nil when n <= 0.
func (p *Pins) AllocF32(n int32) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	buf := make([]float32, n)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	p.keep(ptr, buf)
	return ptr
}

// AllocI32 returns a zeroed buffer of n int32 values, or nil when n <= 0.
func (p *Pins) AllocI32(n int32) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	buf := make([]int32, n)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	p.keep(ptr, buf)
	return ptr
}

// Free releases a buffer returned by AllocF32 or AllocI32 and reports whether
// it was pinned.
func (p *Pins) Free(ptr unsafe.Pointer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := uintptr(ptr)
	if _, ok := p.bufs[key]; !ok {
		return false
	}
	delete(p.bufs, key)
	return true
}

// Len returns the number of live buffers.
func (p *Pins) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bufs)
}

func (p *Pins) keep(ptr unsafe.Pointer, buf any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bufs == nil {
		p.bufs = make(map[uintptr]any)
	}
	p.bufs[uintptr(ptr)] = buf
}
