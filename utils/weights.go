package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"waveunet/nn"
	"waveunet/tensor"
)

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                 `json:"version"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains the parameters of a single layer. Convolutions
// carry weight and bias; normalization layers additionally carry their
// running statistics (weight = gamma, bias = beta).
type LayerWeight struct {
	Weight      *WeightData `json:"weight,omitempty"`
	Bias        *WeightData `json:"bias,omitempty"`
	RunningMean *WeightData `json:"running_mean,omitempty"`
	RunningVar  *WeightData `json:"running_var,omitempty"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int{}, t.Shape...),
		Data:  append([]float64{}, t.Data...),
	}
}

// copyInto copies serialized weight data into an existing tensor,
// rejecting shape mismatches.
func copyInto(dst *tensor.Tensor, src *WeightData) error {
	if src == nil {
		return fmt.Errorf("missing weight data")
	}
	if len(src.Data) != len(dst.Data) {
		return fmt.Errorf("weight %q has %d values, layer expects %d",
			src.Name, len(src.Data), len(dst.Data))
	}
	copy(dst.Data, src.Data)
	return nil
}

// CollectWeights extracts every learned parameter of u into a
// serializable form.
func CollectWeights(u *nn.UNet) *ModelWeights {
	w := &ModelWeights{Version: "1.0", Layers: map[string]LayerWeight{}}
	for i, e := range u.Encoder {
		collectBlock(w, fmt.Sprintf("encoder.%d", i), e.ConvBlock)
	}
	collectBlock(w, "middle", u.Middle)
	for i, d := range u.Decoder {
		collectBlock(w, fmt.Sprintf("decoder.%d", i), d.ConvBlock)
	}
	w.Layers["out.conv"] = LayerWeight{
		Weight: TensorToWeightData("out.conv.weight", u.OutConv.W),
		Bias:   TensorToWeightData("out.conv.bias", u.OutConv.B),
	}
	return w
}

func collectBlock(w *ModelWeights, name string, b *nn.ConvBlock) {
	w.Layers[name+".conv"] = LayerWeight{
		Weight: TensorToWeightData(name+".conv.weight", b.Conv.W),
		Bias:   TensorToWeightData(name+".conv.bias", b.Conv.B),
	}
	w.Layers[name+".norm"] = LayerWeight{
		Weight:      TensorToWeightData(name+".norm.weight", b.Norm.Gamma),
		Bias:        TensorToWeightData(name+".norm.bias", b.Norm.Beta),
		RunningMean: TensorToWeightData(name+".norm.running_mean", b.Norm.RunningMean),
		RunningVar:  TensorToWeightData(name+".norm.running_var", b.Norm.RunningVar),
	}
}

// ApplyWeights loads serialized parameters into u. Every layer of u must
// be present in w with matching shapes.
func ApplyWeights(u *nn.UNet, w *ModelWeights) error {
	for i, e := range u.Encoder {
		if err := applyBlock(w, fmt.Sprintf("encoder.%d", i), e.ConvBlock); err != nil {
			return err
		}
	}
	if err := applyBlock(w, "middle", u.Middle); err != nil {
		return err
	}
	for i, d := range u.Decoder {
		if err := applyBlock(w, fmt.Sprintf("decoder.%d", i), d.ConvBlock); err != nil {
			return err
		}
	}
	lw, ok := w.Layers["out.conv"]
	if !ok {
		return fmt.Errorf("missing weights for layer out.conv")
	}
	if err := copyInto(u.OutConv.W, lw.Weight); err != nil {
		return fmt.Errorf("out.conv: %w", err)
	}
	if err := copyInto(u.OutConv.B, lw.Bias); err != nil {
		return fmt.Errorf("out.conv: %w", err)
	}
	return nil
}

func applyBlock(w *ModelWeights, name string, b *nn.ConvBlock) error {
	cw, ok := w.Layers[name+".conv"]
	if !ok {
		return fmt.Errorf("missing weights for layer %s.conv", name)
	}
	if err := copyInto(b.Conv.W, cw.Weight); err != nil {
		return fmt.Errorf("%s.conv: %w", name, err)
	}
	if err := copyInto(b.Conv.B, cw.Bias); err != nil {
		return fmt.Errorf("%s.conv: %w", name, err)
	}
	nw, ok := w.Layers[name+".norm"]
	if !ok {
		return fmt.Errorf("missing weights for layer %s.norm", name)
	}
	if err := copyInto(b.Norm.Gamma, nw.Weight); err != nil {
		return fmt.Errorf("%s.norm: %w", name, err)
	}
	if err := copyInto(b.Norm.Beta, nw.Bias); err != nil {
		return fmt.Errorf("%s.norm: %w", name, err)
	}
	if err := copyInto(b.Norm.RunningMean, nw.RunningMean); err != nil {
		return fmt.Errorf("%s.norm: %w", name, err)
	}
	if err := copyInto(b.Norm.RunningVar, nw.RunningVar); err != nil {
		return fmt.Errorf("%s.norm: %w", name, err)
	}
	return nil
}
