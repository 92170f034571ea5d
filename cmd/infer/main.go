// waveunet-infer: run one denoising forward pass using saved weights
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"waveunet/nn"
	"waveunet/tensor"
	"waveunet/utils"

	"gonum.org/v1/gonum/floats"
)

var (
	configFile  = flag.String("config", "", "Network config JSON file (default: built-in 12x24)")
	weightsFile = flag.String("weights", "", "Weights JSON file (default: fresh initialization)")
	inputFile   = flag.String("input", "", "Input JSON file ([]float64 waveform)")
	length      = flag.Int("length", 16384, "Synthetic input length when no input file is given")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	stats := &utils.TimingStats{}
	start := time.Now()

	cfg := nn.DefaultConfig()
	if *configFile != "" {
		loadStart := time.Now()
		var err error
		cfg, err = utils.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		stats.ConfigLoadTime = time.Since(loadStart)
	}
	if cfg.DilationEncoder != nil {
		utils.Infof("Dilated convolutions enabled in encoder: layers %v, rates %v\n",
			cfg.DilationEncoder.Layers, cfg.DilationEncoder.Rates)
	}
	if cfg.DilationDecoder != nil {
		utils.Infof("Dilated convolutions enabled in decoder: layers %v, rates %v\n",
			cfg.DilationDecoder.Layers, cfg.DilationDecoder.Rates)
	}

	initStart := time.Now()
	net, err := nn.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assembling network: %v\n", err)
		os.Exit(1)
	}
	stats.ModelInitTime = time.Since(initStart)
	utils.Infof("Assembled %d-stage network, %d-channel interval\n", cfg.NLayers, cfg.ChannelsInterval)

	if *weightsFile != "" {
		loadStart := time.Now()
		weights, err := utils.LoadWeights(*weightsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
			os.Exit(1)
		}
		if err := utils.ApplyWeights(net, weights); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying weights: %v\n", err)
			os.Exit(1)
		}
		stats.WeightsLoadTime = time.Since(loadStart)
		utils.Infof("Loaded %d layers from %s\n", len(weights.Layers), *weightsFile)
	}

	input, err := loadInput(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		os.Exit(1)
	}
	utils.Infof("Input shape: %v\n", input.Shape)

	forwardStart := time.Now()
	output, err := net.Forward(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Forward pass failed: %v\n", err)
		os.Exit(1)
	}
	stats.ForwardPassTime = time.Since(forwardStart)
	stats.TotalTime = time.Since(start)

	fmt.Printf("Output shape: %v\n", output.Shape)
	fmt.Printf("Output range: [%.6f, %.6f]\n", floats.Min(output.Data), floats.Max(output.Data))
	utils.PrintTimingStats(stats, 1)
}

// loadInput reads a waveform from -input, or synthesizes a noisy sine of
// -length samples.
func loadInput(cfg nn.Config) (*tensor.Tensor, error) {
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			return nil, err
		}
		var samples []float64
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, err
		}
		in := tensor.New(1, 1, len(samples))
		copy(in.Data, samples)
		return in, nil
	}

	in := tensor.New(1, 1, *length)
	for i := range in.Data {
		clean := math.Sin(2 * math.Pi * 440 * float64(i) / 16000)
		in.Data[i] = 0.5*clean + 0.1*(rand.Float64()*2-1)
	}
	return in, nil
}
