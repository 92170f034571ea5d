package tensor

import "fmt"

// Tensor is a simple n-D array backed by a flat []float64.
// Waveform batches use the channel-first layout [batch, channels, length].
type Tensor struct {
	Data  []float64
	Shape []int
}

// New allocates a zeroed Tensor of given shape (product of dims = len(Data)).
func New(shape ...int) *Tensor {
	total := 1
	for _, d := range shape {
		total *= d
	}
	return &Tensor{
		Data:  make([]float64, total),
		Shape: append([]int(nil), shape...),
	}
}

// NewWithData creates a 1-D tensor from existing data slice.
func NewWithData(data []float64) *Tensor {
	return &Tensor{
		Data:  append([]float64(nil), data...),
		Shape: []int{len(data)},
	}
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.Data[t.index(indices)]
}

// Set sets the element at the given indices to the given value.
func (t *Tensor) Set(value float64, indices ...int) {
	t.Data[t.index(indices)] = value
}

func (t *Tensor) index(indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.Shape), len(indices)))
	}
	idx := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (shape: %v)", indices[i], i, t.Shape))
		}
		idx += indices[i] * stride
		stride *= t.Shape[i]
	}
	return idx
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b *Tensor) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// ConcatChannels concatenates two [batch, channels, length] tensors along
// the channel dimension. Batch and length must match.
func ConcatChannels(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) != 3 || len(b.Shape) != 3 {
		return nil, fmt.Errorf("ConcatChannels requires 3-D tensors, got %v and %v", a.Shape, b.Shape)
	}
	if a.Shape[0] != b.Shape[0] || a.Shape[2] != b.Shape[2] {
		return nil, fmt.Errorf("ConcatChannels: incompatible shapes %v and %v", a.Shape, b.Shape)
	}
	batch, ca, cb, length := a.Shape[0], a.Shape[1], b.Shape[1], a.Shape[2]
	out := New(batch, ca+cb, length)
	for n := 0; n < batch; n++ {
		dst := out.Data[n*(ca+cb)*length:]
		copy(dst[:ca*length], a.Data[n*ca*length:(n+1)*ca*length])
		copy(dst[ca*length:(ca+cb)*length], b.Data[n*cb*length:(n+1)*cb*length])
	}
	return out, nil
}

// Decimate keeps every factor-th time sample of a [batch, channels, length]
// tensor, starting at sample 0. No anti-aliasing is applied.
func Decimate(t *Tensor, factor int) (*Tensor, error) {
	if len(t.Shape) != 3 {
		return nil, fmt.Errorf("Decimate requires a 3-D tensor, got %v", t.Shape)
	}
	if factor < 1 {
		return nil, fmt.Errorf("Decimate: factor must be >= 1, got %d", factor)
	}
	batch, channels, length := t.Shape[0], t.Shape[1], t.Shape[2]
	outLen := (length + factor - 1) / factor
	out := New(batch, channels, outLen)
	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			src := t.Data[(n*channels+c)*length:]
			dst := out.Data[(n*channels+c)*outLen:]
			for i := 0; i < outLen; i++ {
				dst[i] = src[i*factor]
			}
		}
	}
	return out, nil
}

// Interpolate resamples a [batch, channels, length] tensor to outLen time
// samples using linear interpolation with aligned corners: sample j of the
// output reads position j*(length-1)/(outLen-1) of the input.
func Interpolate(t *Tensor, outLen int) (*Tensor, error) {
	if len(t.Shape) != 3 {
		return nil, fmt.Errorf("Interpolate requires a 3-D tensor, got %v", t.Shape)
	}
	if outLen < 1 {
		return nil, fmt.Errorf("Interpolate: output length must be >= 1, got %d", outLen)
	}
	batch, channels, length := t.Shape[0], t.Shape[1], t.Shape[2]
	out := New(batch, channels, outLen)
	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			src := t.Data[(n*channels+c)*length:]
			dst := out.Data[(n*channels+c)*outLen:]
			if length == 1 || outLen == 1 {
				for j := 0; j < outLen; j++ {
					dst[j] = src[0]
				}
				continue
			}
			scale := float64(length-1) / float64(outLen-1)
			for j := 0; j < outLen; j++ {
				pos := float64(j) * scale
				lo := int(pos)
				if lo >= length-1 {
					dst[j] = src[length-1]
					continue
				}
				frac := pos - float64(lo)
				dst[j] = src[lo]*(1-frac) + src[lo+1]*frac
			}
		}
	}
	return out, nil
}
