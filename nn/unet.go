package nn

import (
	"fmt"

	"waveunet/nn/layers"
	"waveunet/tensor"
)

// UNet is a 1-D convolutional encoder-decoder for waveform-level source
// separation. The topology is fixed at construction; Forward never
// mutates it, so one UNet may serve concurrent inference calls as long
// as training mode is off.
type UNet struct {
	cfg Config

	Encoder []*DownSamplingLayer
	Middle  *ConvBlock
	Decoder []*UpSamplingLayer
	OutConv *layers.Conv1D

	out *Sequential
}

// New assembles a UNet from cfg. All configuration validation happens
// here; a returned error is always a *ConfigError.
func New(cfg Config) (*UNet, error) {
	plan, err := BuildPlan(cfg)
	if err != nil {
		return nil, err
	}

	u := &UNet{
		cfg:     cfg,
		Encoder: make([]*DownSamplingLayer, cfg.NLayers),
		Decoder: make([]*UpSamplingLayer, cfg.NLayers),
		Middle:  newConvBlock(plan.Bottleneck),
	}
	for i, spec := range plan.Encoder {
		u.Encoder[i] = NewDownSamplingLayer(spec)
	}
	for i, spec := range plan.Decoder {
		u.Decoder[i] = NewUpSamplingLayer(spec)
	}
	u.OutConv = layers.NewConv1D(plan.Output.ChannelIn, plan.Output.ChannelOut,
		plan.Output.KernelSize, plan.Output.Stride, plan.Output.Dilation, plan.Output.Padding)
	u.out = NewSequential(u.OutConv, layers.Tanh{})
	return u, nil
}

// Config returns the hyperparameters the network was assembled from.
func (u *UNet) Config() Config { return u.cfg }

// SetTraining switches every normalization layer between batch and
// running statistics.
func (u *UNet) SetTraining(training bool) {
	for _, e := range u.Encoder {
		e.SetTraining(training)
	}
	u.Middle.SetTraining(training)
	for _, d := range u.Decoder {
		d.SetTraining(training)
	}
}

// Forward runs one inference pass over x [batch, 1, length] and returns
// a tensor of the same shape with values in (-1, 1). The length must be
// a positive multiple of 2^NLayers so that the decimation/upsampling
// round trip reproduces it exactly.
func (u *UNet) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := u.checkInput(x); err != nil {
		return nil, err
	}

	o := x
	skips := make([]*tensor.Tensor, 0, u.cfg.NLayers)
	for i, stage := range u.Encoder {
		var err error
		o, err = stage.Forward(o)
		if err != nil {
			return nil, shapeErrorf(stageName("encoder", i), "%v", err)
		}
		skips = append(skips, o)
		o, err = tensor.Decimate(o, 2)
		if err != nil {
			return nil, shapeErrorf(stageName("encoder", i), "%v", err)
		}
	}

	o, err := u.Middle.Forward(o)
	if err != nil {
		return nil, shapeErrorf("bottleneck", "%v", err)
	}

	for i, stage := range u.Decoder {
		o, err = tensor.Interpolate(o, 2*o.Shape[2])
		if err != nil {
			return nil, shapeErrorf(stageName("decoder", i), "%v", err)
		}
		skip := skips[u.cfg.NLayers-1-i]
		if skip.Shape[2] != o.Shape[2] {
			return nil, shapeErrorf(stageName("decoder", i),
				"skip length %d does not match upsampled length %d", skip.Shape[2], o.Shape[2])
		}
		o, err = tensor.ConcatChannels(o, skip)
		if err != nil {
			return nil, shapeErrorf(stageName("decoder", i), "%v", err)
		}
		o, err = stage.Forward(o)
		if err != nil {
			return nil, shapeErrorf(stageName("decoder", i), "%v", err)
		}
	}

	o, err = tensor.ConcatChannels(o, x)
	if err != nil {
		return nil, shapeErrorf("output", "%v", err)
	}
	o, err = u.out.Forward(o)
	if err != nil {
		return nil, shapeErrorf("output", "%v", err)
	}
	return o, nil
}

func (u *UNet) checkInput(x *tensor.Tensor) error {
	if len(x.Shape) != 3 {
		return shapeErrorf("input", "expected [batch, 1, length], got shape %v", x.Shape)
	}
	if x.Shape[1] != 1 {
		return shapeErrorf("input", "expected a single channel, got %d", x.Shape[1])
	}
	length := x.Shape[2]
	granularity := 1 << uint(u.cfg.NLayers)
	if length <= 0 || length%granularity != 0 {
		return shapeErrorf("input",
			"length %d is not a positive multiple of 2^%d = %d", length, u.cfg.NLayers, granularity)
	}
	return nil
}

func stageName(kind string, i int) string {
	return fmt.Sprintf("%s stage %d", kind, i)
}
