package layers

import (
	"fmt"
	"math"

	"waveunet/tensor"

	"gonum.org/v1/gonum/stat/distuv"
)

// Conv1D is a dilated 1-D convolution over [batch, channels, length]
// tensors with symmetric zero padding.
type Conv1D struct {
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int
	Dilation    int
	Padding     int

	W *tensor.Tensor // weights: [outChannels, inChannels, kernelSize]
	B *tensor.Tensor // bias: [outChannels]
}

// NewConv1D creates a Conv1D layer with fan-in-scaled uniform initial
// weights.
func NewConv1D(inChannels, outChannels, kernelSize, stride, dilation, padding int) *Conv1D {
	c := &Conv1D{
		InChannels:  inChannels,
		OutChannels: outChannels,
		KernelSize:  kernelSize,
		Stride:      stride,
		Dilation:    dilation,
		Padding:     padding,
		W:           tensor.New(outChannels, inChannels, kernelSize),
		B:           tensor.New(outChannels),
	}
	c.initParams()
	return c
}

func (c *Conv1D) initParams() {
	fanIn := float64(c.InChannels * c.KernelSize)
	bound := 1.0 / math.Sqrt(fanIn)
	u := distuv.Uniform{Min: -bound, Max: bound}
	for i := range c.W.Data {
		c.W.Data[i] = u.Rand()
	}
	for i := range c.B.Data {
		c.B.Data[i] = u.Rand()
	}
}

// OutputLength returns the sequence length produced for an input of
// length lIn.
func (c *Conv1D) OutputLength(lIn int) int {
	return (lIn+2*c.Padding-c.Dilation*(c.KernelSize-1)-1)/c.Stride + 1
}

// Forward convolves x [batch, inChannels, length] into
// [batch, outChannels, OutputLength(length)]. Samples read from the
// padded region contribute zero.
func (c *Conv1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 3 {
		return nil, fmt.Errorf("Conv1D expects [batch, channels, length], got shape %v", x.Shape)
	}
	batch, channels, length := x.Shape[0], x.Shape[1], x.Shape[2]
	if channels != c.InChannels {
		return nil, fmt.Errorf("Conv1D expects %d input channels, got %d", c.InChannels, channels)
	}
	outLen := c.OutputLength(length)
	if outLen < 1 {
		return nil, fmt.Errorf("Conv1D: input length %d too short for kernel %d dilation %d",
			length, c.KernelSize, c.Dilation)
	}

	out := tensor.New(batch, c.OutChannels, outLen)
	for n := 0; n < batch; n++ {
		for oc := 0; oc < c.OutChannels; oc++ {
			dst := out.Data[(n*c.OutChannels+oc)*outLen:]
			for y := 0; y < outLen; y++ {
				sum := c.B.Data[oc]
				base := y*c.Stride - c.Padding
				for ic := 0; ic < c.InChannels; ic++ {
					src := x.Data[(n*c.InChannels+ic)*length:]
					w := c.W.Data[(oc*c.InChannels+ic)*c.KernelSize:]
					for k := 0; k < c.KernelSize; k++ {
						pos := base + k*c.Dilation
						if pos < 0 || pos >= length {
							continue
						}
						sum += w[k] * src[pos]
					}
				}
				dst[y] = sum
			}
		}
	}
	return out, nil
}
