package layers

import (
	"fmt"
	"math"

	"waveunet/tensor"

	"gonum.org/v1/gonum/floats"
)

// BatchNorm1D normalizes each channel of a [batch, channels, length]
// tensor. In training mode it normalizes with the statistics of the
// current batch and updates the running estimates; in inference mode it
// reads the running estimates only, so concurrent forward calls are safe.
type BatchNorm1D struct {
	NumFeatures int
	Eps         float64
	Momentum    float64

	Gamma       *tensor.Tensor // scale: [numFeatures]
	Beta        *tensor.Tensor // shift: [numFeatures]
	RunningMean *tensor.Tensor // [numFeatures]
	RunningVar  *tensor.Tensor // [numFeatures]

	training bool
}

// NewBatchNorm1D creates a BatchNorm1D layer in inference mode with unit
// scale, zero shift and unit running variance.
func NewBatchNorm1D(numFeatures int) *BatchNorm1D {
	b := &BatchNorm1D{
		NumFeatures: numFeatures,
		Eps:         1e-5,
		Momentum:    0.1,
		Gamma:       tensor.New(numFeatures),
		Beta:        tensor.New(numFeatures),
		RunningMean: tensor.New(numFeatures),
		RunningVar:  tensor.New(numFeatures),
	}
	for i := 0; i < numFeatures; i++ {
		b.Gamma.Data[i] = 1
		b.RunningVar.Data[i] = 1
	}
	return b
}

// SetTraining switches between batch statistics (true) and running
// statistics (false).
func (b *BatchNorm1D) SetTraining(training bool) { b.training = training }

// Training reports which statistics Forward uses.
func (b *BatchNorm1D) Training() bool { return b.training }

// Forward normalizes x per channel.
func (b *BatchNorm1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 3 {
		return nil, fmt.Errorf("BatchNorm1D expects [batch, channels, length], got shape %v", x.Shape)
	}
	batch, channels, length := x.Shape[0], x.Shape[1], x.Shape[2]
	if channels != b.NumFeatures {
		return nil, fmt.Errorf("BatchNorm1D expects %d channels, got %d", b.NumFeatures, channels)
	}

	out := tensor.New(batch, channels, length)
	for f := 0; f < channels; f++ {
		mean := b.RunningMean.Data[f]
		variance := b.RunningVar.Data[f]
		if b.training {
			mean, variance = b.batchStats(x, f)
			b.RunningMean.Data[f] = (1-b.Momentum)*b.RunningMean.Data[f] + b.Momentum*mean
			b.RunningVar.Data[f] = (1-b.Momentum)*b.RunningVar.Data[f] + b.Momentum*variance
		}
		std := math.Sqrt(variance + b.Eps)
		gamma, beta := b.Gamma.Data[f], b.Beta.Data[f]
		for n := 0; n < batch; n++ {
			src := x.Data[(n*channels+f)*length : (n*channels+f+1)*length]
			dst := out.Data[(n*channels+f)*length : (n*channels+f+1)*length]
			for i, v := range src {
				dst[i] = gamma*(v-mean)/std + beta
			}
		}
	}
	return out, nil
}

// batchStats computes mean and biased variance of channel f over batch
// and time.
func (b *BatchNorm1D) batchStats(x *tensor.Tensor, f int) (mean, variance float64) {
	batch, channels, length := x.Shape[0], x.Shape[1], x.Shape[2]
	count := float64(batch * length)
	for n := 0; n < batch; n++ {
		mean += floats.Sum(x.Data[(n*channels+f)*length : (n*channels+f+1)*length])
	}
	mean /= count
	for n := 0; n < batch; n++ {
		src := x.Data[(n*channels+f)*length : (n*channels+f+1)*length]
		for _, v := range src {
			d := v - mean
			variance += d * d
		}
	}
	variance /= count
	return mean, variance
}
