package nn

import (
	"waveunet/nn/layers"
	"waveunet/tensor"
)

// leakySlope is the negative slope shared by every block activation.
const leakySlope = 0.1

// ConvBlock is one convolution, batch normalization, leaky activation
// unit. Encoder stages, decoder stages and the bottleneck all share this
// structure; only their derived LayerSpec differs.
type ConvBlock struct {
	Conv *layers.Conv1D
	Norm *layers.BatchNorm1D

	main *Sequential
}

func newConvBlock(spec LayerSpec) *ConvBlock {
	conv := layers.NewConv1D(spec.ChannelIn, spec.ChannelOut, spec.KernelSize,
		spec.Stride, spec.Dilation, spec.Padding)
	norm := layers.NewBatchNorm1D(spec.ChannelOut)
	return &ConvBlock{
		Conv: conv,
		Norm: norm,
		main: NewSequential(conv, norm, layers.NewLeakyReLU(leakySlope)),
	}
}

// Forward applies conv, norm and activation in order.
func (b *ConvBlock) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return b.main.Forward(x)
}

// SetTraining switches the block's normalization statistics mode.
func (b *ConvBlock) SetTraining(training bool) { b.Norm.SetTraining(training) }

// DownSamplingLayer is one encoder stage. The stride-2 decimation that
// follows it in the forward pass lives in the pipeline, not the block.
type DownSamplingLayer struct {
	*ConvBlock
}

// NewDownSamplingLayer builds an encoder stage from its derived spec.
func NewDownSamplingLayer(spec LayerSpec) *DownSamplingLayer {
	return &DownSamplingLayer{ConvBlock: newConvBlock(spec)}
}

// UpSamplingLayer is one decoder stage, consuming the concatenation of
// the upsampled signal and its mirrored skip tensor.
type UpSamplingLayer struct {
	*ConvBlock
}

// NewUpSamplingLayer builds a decoder stage from its derived spec.
func NewUpSamplingLayer(spec LayerSpec) *UpSamplingLayer {
	return &UpSamplingLayer{ConvBlock: newConvBlock(spec)}
}
