package kernels

import "github.com/chewxy/math32"

// Tanh is the hyperbolic tangent in float32 precision.
func Tanh(x float32) float32 {
	return math32.Tanh(x)
}

// Sigmoid computes the logistic function 1/(1+e^-x). Extreme inputs saturate
// through the float32 overflow of Exp.
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
