package layers

import (
	"math"

	"waveunet/tensor"
)

// LeakyReLU passes positive values through and scales negative values by
// NegativeSlope.
type LeakyReLU struct {
	NegativeSlope float64
}

// NewLeakyReLU creates a LeakyReLU activation.
func NewLeakyReLU(negativeSlope float64) *LeakyReLU {
	return &LeakyReLU{NegativeSlope: negativeSlope}
}

func (a *LeakyReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		if v >= 0 {
			out.Data[i] = v
		} else {
			out.Data[i] = a.NegativeSlope * v
		}
	}
	return out, nil
}

// Tanh saturates values into the open interval (-1, 1).
type Tanh struct{}

func (Tanh) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		out.Data[i] = math.Tanh(v)
	}
	return out, nil
}
