package nn

// Config holds the hyperparameters the network topology is derived from.
type Config struct {
	NLayers           int             `json:"n_layers"`
	ChannelsInterval  int             `json:"channels_interval"`
	KernelSizeEncoder int             `json:"kernel_size_in_encoder"`
	KernelSizeDecoder int             `json:"kernel_size_in_decoder"`
	DilationEncoder   *DilationConfig `json:"dilation_in_encoder,omitempty"`
	DilationDecoder   *DilationConfig `json:"dilation_in_decoder,omitempty"`
}

// DilationConfig lists the 1-based layer indices that receive a dilated
// convolution and the rate applied to each. Layers is positionally paired
// with Rates; layers not listed run with dilation 1.
type DilationConfig struct {
	Layers []int `json:"layers"`
	Rates  []int `json:"dilated_rates"`
}

// DefaultConfig returns the network shape used for 16384-sample waveform
// chunks: 12 stages growing by 24 channels each, kernel 15 down and 5 up.
func DefaultConfig() Config {
	return Config{
		NLayers:           12,
		ChannelsInterval:  24,
		KernelSizeEncoder: 15,
		KernelSizeDecoder: 5,
	}
}

// Validate checks the scalar hyperparameters. Dilation schedules are
// validated separately when resolved against NLayers.
func (c Config) Validate() error {
	if c.NLayers <= 0 {
		return configErrorf("n_layers must be positive, got %d", c.NLayers)
	}
	if c.ChannelsInterval <= 0 {
		return configErrorf("channels_interval must be positive, got %d", c.ChannelsInterval)
	}
	if c.KernelSizeEncoder <= 0 {
		return configErrorf("kernel_size_in_encoder must be positive, got %d", c.KernelSizeEncoder)
	}
	if c.KernelSizeDecoder <= 0 {
		return configErrorf("kernel_size_in_decoder must be positive, got %d", c.KernelSizeDecoder)
	}
	return nil
}
