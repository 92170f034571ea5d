package nn

// The topology is not fixed: stage count, channel growth and dilation
// placement are all derived from Config. BuildPlan does that derivation as
// a pure function so the arithmetic can be tested without any tensors;
// New (unet.go) instantiates real layers from the result.

// LayerSpec is the derived shape of one convolution stage.
type LayerSpec struct {
	ChannelIn  int
	ChannelOut int
	KernelSize int
	Stride     int
	Dilation   int
	Padding    int
}

// Plan is the ordered set of layer shapes for a full network.
type Plan struct {
	Encoder    []LayerSpec
	Bottleneck LayerSpec
	Decoder    []LayerSpec
	Output     LayerSpec
}

// bottleneckKernelSize is fixed regardless of the encoder/decoder kernels.
const bottleneckKernelSize = 15

// SamePadding returns the symmetric padding under which a convolution with
// the given parameters maps an input of length lIn to an output of the
// same length at stride 1. The effective receptive field is
// dilation*(kernelSize-1)+1; at stride 1 the result does not depend on
// lIn, so any positive value may be passed.
func SamePadding(lIn, kernelSize, stride, dilation int) int {
	effective := dilation*(kernelSize-1) + 1
	return ((lIn-1)*stride + effective - lIn) / 2
}

// DilationSchedule maps 1-based layer indices to dilation rates. Absent
// indices resolve to 1.
type DilationSchedule struct {
	rates map[int]int
}

// NewDilationSchedule validates cfg against nLayers and folds the two
// positional lists into a single mapping. A nil cfg yields a schedule
// that resolves every layer to 1.
func NewDilationSchedule(cfg *DilationConfig, nLayers int) (DilationSchedule, error) {
	s := DilationSchedule{rates: map[int]int{}}
	if cfg == nil {
		return s, nil
	}
	if len(cfg.Layers) != len(cfg.Rates) {
		return s, configErrorf("dilation layers and rates differ in length: %d vs %d",
			len(cfg.Layers), len(cfg.Rates))
	}
	for i, layer := range cfg.Layers {
		if layer < 1 || layer > nLayers {
			return s, configErrorf("dilation layer index %d outside [1, %d]", layer, nLayers)
		}
		if _, dup := s.rates[layer]; dup {
			return s, configErrorf("duplicate dilation layer index %d", layer)
		}
		if cfg.Rates[i] < 1 {
			return s, configErrorf("dilation rate for layer %d must be positive, got %d",
				layer, cfg.Rates[i])
		}
		s.rates[layer] = cfg.Rates[i]
	}
	return s, nil
}

// Rate resolves the dilation for a 1-based layer index.
func (s DilationSchedule) Rate(layer int) int {
	if r, ok := s.rates[layer]; ok {
		return r
	}
	return 1
}

// Empty reports whether the schedule dilates no layer.
func (s DilationSchedule) Empty() bool { return len(s.rates) == 0 }

// channelPlan computes the per-stage channel widths. Encoder widths grow
// by channelsInterval per stage; decoder widths mirror them in reverse,
// with each decoder input widened by the skip tensor it concatenates.
func channelPlan(nLayers, channelsInterval int) (encIn, encOut, decIn, decOut []int) {
	encIn = make([]int, nLayers)
	encOut = make([]int, nLayers)
	encIn[0] = 1
	for i := 0; i < nLayers; i++ {
		if i > 0 {
			encIn[i] = i * channelsInterval
		}
		encOut[i] = (i + 1) * channelsInterval
	}

	// Built shallow-to-deep as [3c, 5c, ..., (2n-1)c, 2nc], then reversed
	// so index 0 is the stage next to the bottleneck.
	decIn = make([]int, 0, nLayers)
	for i := 1; i < nLayers; i++ {
		decIn = append(decIn, (2*i+1)*channelsInterval)
	}
	decIn = append(decIn, 2*nLayers*channelsInterval)
	reverseInts(decIn)

	decOut = make([]int, nLayers)
	for i := 0; i < nLayers; i++ {
		decOut[i] = encOut[nLayers-1-i]
	}
	return encIn, encOut, decIn, decOut
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// BuildPlan derives every layer shape of the network from cfg. It fails
// with a ConfigError on invalid hyperparameters, malformed dilation
// schedules, or kernel/dilation pairs whose receptive field cannot be
// padded symmetrically to preserve length.
func BuildPlan(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	encSched, err := NewDilationSchedule(cfg.DilationEncoder, cfg.NLayers)
	if err != nil {
		return nil, err
	}
	decSched, err := NewDilationSchedule(cfg.DilationDecoder, cfg.NLayers)
	if err != nil {
		return nil, err
	}

	encIn, encOut, decIn, decOut := channelPlan(cfg.NLayers, cfg.ChannelsInterval)

	p := &Plan{
		Encoder: make([]LayerSpec, cfg.NLayers),
		Decoder: make([]LayerSpec, cfg.NLayers),
	}
	for i := 0; i < cfg.NLayers; i++ {
		d := encSched.Rate(i + 1)
		if err := checkSameLength(cfg.KernelSizeEncoder, d); err != nil {
			return nil, err
		}
		p.Encoder[i] = LayerSpec{
			ChannelIn:  encIn[i],
			ChannelOut: encOut[i],
			KernelSize: cfg.KernelSizeEncoder,
			Stride:     1,
			Dilation:   d,
			Padding:    SamePadding(1, cfg.KernelSizeEncoder, 1, d),
		}
	}

	mid := cfg.NLayers * cfg.ChannelsInterval
	p.Bottleneck = LayerSpec{
		ChannelIn:  mid,
		ChannelOut: mid,
		KernelSize: bottleneckKernelSize,
		Stride:     1,
		Dilation:   1,
		Padding:    SamePadding(1, bottleneckKernelSize, 1, 1),
	}

	for i := 0; i < cfg.NLayers; i++ {
		d := decSched.Rate(i + 1)
		if err := checkSameLength(cfg.KernelSizeDecoder, d); err != nil {
			return nil, err
		}
		p.Decoder[i] = LayerSpec{
			ChannelIn:  decIn[i],
			ChannelOut: decOut[i],
			KernelSize: cfg.KernelSizeDecoder,
			Stride:     1,
			Dilation:   d,
			Padding:    SamePadding(1, cfg.KernelSizeDecoder, 1, d),
		}
	}

	p.Output = LayerSpec{
		ChannelIn:  1 + cfg.ChannelsInterval,
		ChannelOut: 1,
		KernelSize: 1,
		Stride:     1,
		Dilation:   1,
		Padding:    0,
	}
	return p, nil
}

// checkSameLength rejects kernel/dilation pairs with an even receptive
// field span: those cannot preserve length with symmetric padding.
func checkSameLength(kernelSize, dilation int) error {
	if dilation*(kernelSize-1)%2 != 0 {
		return configErrorf("kernel %d with dilation %d cannot preserve length under symmetric padding",
			kernelSize, dilation)
	}
	return nil
}
