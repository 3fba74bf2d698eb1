package kernels

// Lanes is the number of partial sums the reduction primitives carry.
const Lanes = 4

// The active reduction paths. Both produce bit-identical sums; the vector
// path replaces them at init when the CPU supports it.
var (
	dotImpl    = dotLanes
	dotMulImpl = dotMulLanes
	dotPath    = "generic"
)

// Dot computes the sum of w[i]*x[i] for i in [0,n).
//
// Elements are consumed in groups of four into four lane accumulators, the
// lanes are folded as ((l0+l1)+l2)+l3 and any remainder is added serially.
// Every product is rounded to float32 before it is accumulated, so the result
// does not depend on whether the platform fuses multiply-add.
func Dot(w, x []float32, n int) float32 {
	n = Count(n)
	if n == 0 {
		return 0
	}
	return dotImpl(w[:n], x[:n])
}

// DotMul computes the sum of w[i]*(a[i]*b[i]) for i in [0,n) with the same
// reduction order as Dot.
func DotMul(w, a, b []float32, n int) float32 {
	n = Count(n)
	if n == 0 {
		return 0
	}
	return dotMulImpl(w[:n], a[:n], b[:n])
}

// Path names the reduction implementation selected for this process.
func Path() string {
	return dotPath
}

func laneSum(l [Lanes]float32) float32 {
	return ((l[0] + l[1]) + l[2]) + l[3]
}

func dotLanes(w, x []float32) float32 {
	n := len(w)
	x = x[:n]
	var acc [Lanes]float32
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		acc[0] += float32(w[i] * x[i])
		acc[1] += float32(w[i+1] * x[i+1])
		acc[2] += float32(w[i+2] * x[i+2])
		acc[3] += float32(w[i+3] * x[i+3])
	}
	sum := laneSum(acc)
	for ; i < n; i++ {
		sum += float32(w[i] * x[i])
	}
	return sum
}

func dotMulLanes(w, a, b []float32) float32 {
	n := len(w)
	a, b = a[:n], b[:n]
	var acc [Lanes]float32
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		acc[0] += float32(w[i] * float32(a[i]*b[i]))
		acc[1] += float32(w[i+1] * float32(a[i+1]*b[i+1]))
		acc[2] += float32(w[i+2] * float32(a[i+2]*b[i+2]))
		acc[3] += float32(w[i+3] * float32(a[i+3]*b[i+3]))
	}
	sum := laneSum(acc)
	for ; i < n; i++ {
		sum += float32(w[i] * float32(a[i]*b[i]))
	}
	return sum
}
