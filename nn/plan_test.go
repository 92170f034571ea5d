package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamePaddingStandardKernels(t *testing.T) {
	// kernel 15 / dilation 1 -> pad 7; kernel 5 / dilation 1 -> pad 2
	assert.Equal(t, 7, SamePadding(16384, 15, 1, 1))
	assert.Equal(t, 2, SamePadding(16384, 5, 1, 1))
	// dilation stretches the receptive field: 3*(15-1)+1 = 43 -> pad 21
	assert.Equal(t, 21, SamePadding(16384, 15, 1, 3))
	assert.Equal(t, 0, SamePadding(16384, 1, 1, 1))
}

func TestSamePaddingIndependentOfLengthAtStrideOne(t *testing.T) {
	for _, lIn := range []int{1, 16, 173, 16384} {
		assert.Equal(t, SamePadding(1, 15, 1, 2), SamePadding(lIn, 15, 1, 2),
			"padding must not depend on l_in at stride 1")
	}
}

func TestSamePaddingPreservesLength(t *testing.T) {
	// l_out = l_in + 2*pad - dilation*(kernel-1) must equal l_in.
	cases := []struct{ kernel, dilation int }{
		{15, 1}, {5, 1}, {15, 3}, {5, 2}, {3, 7}, {1, 1}, {9, 4},
	}
	for _, c := range cases {
		pad := SamePadding(64, c.kernel, 1, c.dilation)
		lOut := 64 + 2*pad - c.dilation*(c.kernel-1)
		assert.Equal(t, 64, lOut, "kernel %d dilation %d", c.kernel, c.dilation)
	}
}

func TestDilationScheduleResolve(t *testing.T) {
	cfg := &DilationConfig{Layers: []int{2}, Rates: []int{3}}
	s, err := NewDilationSchedule(cfg, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Rate(1))
	assert.Equal(t, 3, s.Rate(2))
	assert.Equal(t, 1, s.Rate(3))
}

func TestDilationScheduleNilConfig(t *testing.T) {
	s, err := NewDilationSchedule(nil, 12)
	require.NoError(t, err)
	assert.True(t, s.Empty())
	for i := 1; i <= 12; i++ {
		assert.Equal(t, 1, s.Rate(i))
	}
}

func TestDilationScheduleRejectsMalformedConfigs(t *testing.T) {
	cases := map[string]*DilationConfig{
		"length mismatch": {Layers: []int{1, 2}, Rates: []int{3}},
		"index too large": {Layers: []int{4}, Rates: []int{2}},
		"index zero":      {Layers: []int{0}, Rates: []int{2}},
		"duplicate index": {Layers: []int{2, 2}, Rates: []int{2, 4}},
		"rate zero":       {Layers: []int{1}, Rates: []int{0}},
	}
	for name, cfg := range cases {
		_, err := NewDilationSchedule(cfg, 3)
		require.Error(t, err, name)
		var cerr *ConfigError
		assert.True(t, errors.As(err, &cerr), "%s: want ConfigError, got %v", name, err)
	}
}

func TestChannelPlanSmall(t *testing.T) {
	encIn, encOut, decIn, decOut := channelPlan(2, 4)
	assert.Equal(t, []int{1, 4}, encIn)
	assert.Equal(t, []int{4, 8}, encOut)
	assert.Equal(t, []int{16, 12}, decIn)
	assert.Equal(t, []int{8, 4}, decOut)
}

func TestChannelPlanFullSize(t *testing.T) {
	const n, ci = 12, 24
	encIn, encOut, decIn, decOut := channelPlan(n, ci)

	assert.Equal(t, 1, encIn[0])
	for i := 0; i < n; i++ {
		assert.Equal(t, (i+1)*ci, encOut[i])
		if i > 0 {
			assert.Equal(t, encOut[i-1], encIn[i])
		}
		assert.Equal(t, encOut[n-1-i], decOut[i])
	}

	// Deepest decoder stage consumes bottleneck output plus the deepest
	// skip tensor, both n*ci channels wide.
	assert.Equal(t, 2*n*ci, decIn[0])
	for i := 1; i < n; i++ {
		assert.Equal(t, decOut[i-1]+encOut[n-1-i], decIn[i],
			"mirrored concatenation invariant at decoder stage %d", i)
	}
}

func TestBuildPlanConcreteScenario(t *testing.T) {
	cfg := Config{NLayers: 2, ChannelsInterval: 4, KernelSizeEncoder: 15, KernelSizeDecoder: 5}
	p, err := BuildPlan(cfg)
	require.NoError(t, err)

	require.Len(t, p.Encoder, 2)
	assert.Equal(t, LayerSpec{ChannelIn: 1, ChannelOut: 4, KernelSize: 15, Stride: 1, Dilation: 1, Padding: 7}, p.Encoder[0])
	assert.Equal(t, LayerSpec{ChannelIn: 4, ChannelOut: 8, KernelSize: 15, Stride: 1, Dilation: 1, Padding: 7}, p.Encoder[1])

	assert.Equal(t, LayerSpec{ChannelIn: 8, ChannelOut: 8, KernelSize: 15, Stride: 1, Dilation: 1, Padding: 7}, p.Bottleneck)

	require.Len(t, p.Decoder, 2)
	assert.Equal(t, LayerSpec{ChannelIn: 16, ChannelOut: 8, KernelSize: 5, Stride: 1, Dilation: 1, Padding: 2}, p.Decoder[0])
	assert.Equal(t, LayerSpec{ChannelIn: 12, ChannelOut: 4, KernelSize: 5, Stride: 1, Dilation: 1, Padding: 2}, p.Decoder[1])

	assert.Equal(t, LayerSpec{ChannelIn: 5, ChannelOut: 1, KernelSize: 1, Stride: 1, Dilation: 1, Padding: 0}, p.Output)
}

func TestBuildPlanAppliesDilationSchedules(t *testing.T) {
	cfg := Config{
		NLayers:           3,
		ChannelsInterval:  8,
		KernelSizeEncoder: 15,
		KernelSizeDecoder: 5,
		DilationEncoder:   &DilationConfig{Layers: []int{2}, Rates: []int{3}},
		DilationDecoder:   &DilationConfig{Layers: []int{1, 3}, Rates: []int{2, 4}},
	}
	p, err := BuildPlan(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Encoder[0].Dilation)
	assert.Equal(t, 3, p.Encoder[1].Dilation)
	assert.Equal(t, 21, p.Encoder[1].Padding)
	assert.Equal(t, 1, p.Encoder[2].Dilation)

	assert.Equal(t, 2, p.Decoder[0].Dilation)
	assert.Equal(t, 4, p.Decoder[0].Padding)
	assert.Equal(t, 1, p.Decoder[1].Dilation)
	assert.Equal(t, 4, p.Decoder[2].Dilation)
	assert.Equal(t, 8, p.Decoder[2].Padding)
}

func TestBuildPlanRejectsInvalidConfig(t *testing.T) {
	bad := []Config{
		{NLayers: 0, ChannelsInterval: 4, KernelSizeEncoder: 15, KernelSizeDecoder: 5},
		{NLayers: 2, ChannelsInterval: 0, KernelSizeEncoder: 15, KernelSizeDecoder: 5},
		{NLayers: 2, ChannelsInterval: 4, KernelSizeEncoder: 0, KernelSizeDecoder: 5},
		{NLayers: 2, ChannelsInterval: 4, KernelSizeEncoder: 15, KernelSizeDecoder: -1},
	}
	for _, cfg := range bad {
		_, err := BuildPlan(cfg)
		var cerr *ConfigError
		require.Error(t, err)
		assert.True(t, errors.As(err, &cerr), "want ConfigError, got %v", err)
	}
}

func TestBuildPlanRejectsOddReceptiveSpan(t *testing.T) {
	// kernel 4 with dilation 1 spans 3 taps of padding total: no symmetric
	// split preserves length.
	cfg := Config{NLayers: 1, ChannelsInterval: 4, KernelSizeEncoder: 4, KernelSizeDecoder: 5}
	_, err := BuildPlan(cfg)
	var cerr *ConfigError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cerr))
}
