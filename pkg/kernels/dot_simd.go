//go:build amd64 && goexperiment.simd

package kernels

import (
	"simd/archsimd"

	"github.com/samcharles93/nnkern/internal/cpuinfo"
)

func init() {
	if cpuinfo.NoSIMD() || !archsimd.X86.AVX() {
		return
	}
	dotImpl = dotSIMD
	dotMulImpl = dotMulSIMD
	dotPath = "archsimd-f32x4"
}

// dotSIMD keeps one Float32x4 accumulator so lane l sums exactly the
// products dotLanes puts in acc[l]. Mul and Add stay separate instructions.
func dotSIMD(w, x []float32) float32 {
	n := len(w)
	x = x[:n]
	var acc archsimd.Float32x4
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		vw := archsimd.LoadFloat32x4Slice(w[i:])
		vx := archsimd.LoadFloat32x4Slice(x[i:])
		acc = acc.Add(vw.Mul(vx))
	}
	var lanes [Lanes]float32
	acc.Store(&lanes)
	sum := laneSum(lanes)
	for ; i < n; i++ {
		sum += float32(w[i] * x[i])
	}
	return sum
}

func dotMulSIMD(w, a, b []float32) float32 {
	n := len(w)
	a, b = a[:n], b[:n]
	var acc archsimd.Float32x4
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		vw := archsimd.LoadFloat32x4Slice(w[i:])
		va := archsimd.LoadFloat32x4Slice(a[i:])
		vb := archsimd.LoadFloat32x4Slice(b[i:])
		acc = acc.Add(vw.Mul(va.Mul(vb)))
	}
	var lanes [Lanes]float32
	acc.Store(&lanes)
	sum := laneSum(lanes)
	for ; i < n; i++ {
		sum += float32(w[i] * float32(a[i]*b[i]))
	}
	return sum
}
