package layers

import (
	"math"
	"testing"

	"waveunet/tensor"
)

func TestConv1DIdentity1x1(t *testing.T) {
	conv := NewConv1D(1, 1, 1, 1, 1, 0)
	conv.W.Set(1.0, 0, 0, 0)
	conv.B.Set(0.0, 0)

	in := tensor.New(1, 1, 8)
	for i := 0; i < 8; i++ {
		in.Data[i] = float64(i + 1)
	}
	out, err := conv.Forward(in)
	if err != nil {
		t.Fatalf("bad conv1d: %v", err)
	}
	if len(out.Shape) != 3 || out.Shape[0] != 1 || out.Shape[1] != 1 || out.Shape[2] != 8 {
		t.Fatalf("unexpected output shape: %v", out.Shape)
	}
	for i := range in.Data {
		if out.Data[i] != in.Data[i] {
			t.Fatalf("identity conv changed sample %d: %f != %f", i, out.Data[i], in.Data[i])
		}
	}
}

func TestConv1DSamePaddingPreservesLength(t *testing.T) {
	cases := []struct{ kernel, dilation, padding int }{
		{15, 1, 7},
		{5, 1, 2},
		{15, 3, 21},
		{5, 2, 4},
	}
	for _, c := range cases {
		conv := NewConv1D(2, 3, c.kernel, 1, c.dilation, c.padding)
		out, err := conv.Forward(tensor.New(1, 2, 32))
		if err != nil {
			t.Fatalf("kernel %d dilation %d: %v", c.kernel, c.dilation, err)
		}
		if out.Shape[1] != 3 || out.Shape[2] != 32 {
			t.Fatalf("kernel %d dilation %d: unexpected shape %v", c.kernel, c.dilation, out.Shape)
		}
	}
}

func TestConv1DAveragingKernel(t *testing.T) {
	// A 3-tap averaging kernel on a constant signal returns the constant
	// in the interior and 2/3 of it at the zero-padded edges.
	conv := NewConv1D(1, 1, 3, 1, 1, 1)
	for k := 0; k < 3; k++ {
		conv.W.Set(1.0/3.0, 0, 0, k)
	}
	conv.B.Set(0.0, 0)

	in := tensor.New(1, 1, 6)
	for i := range in.Data {
		in.Data[i] = 3.0
	}
	out, err := conv.Forward(in)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.Data[0]-2.0) > 1e-12 || math.Abs(out.Data[5]-2.0) > 1e-12 {
		t.Fatalf("edge samples should see one padded zero: %v", out.Data)
	}
	for i := 1; i < 5; i++ {
		if math.Abs(out.Data[i]-3.0) > 1e-12 {
			t.Fatalf("interior sample %d: got %f, want 3.0", i, out.Data[i])
		}
	}
}

func TestConv1DDilatedTaps(t *testing.T) {
	// Kernel [1, 1] with dilation 2 sums samples two apart.
	conv := NewConv1D(1, 1, 2, 1, 2, 1)
	conv.W.Set(1.0, 0, 0, 0)
	conv.W.Set(1.0, 0, 0, 1)
	conv.B.Set(0.0, 0)

	in := tensor.New(1, 1, 4)
	copy(in.Data, []float64{1, 2, 3, 4})
	out, err := conv.Forward(in)
	if err != nil {
		t.Fatal(err)
	}
	// Output y reads positions y-1 and y+1.
	want := []float64{2, 1 + 3, 2 + 4, 3}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Fatalf("at %d, got %f, want %f", i, out.Data[i], want[i])
		}
	}
}

func TestConv1DChannelMismatch(t *testing.T) {
	conv := NewConv1D(2, 4, 3, 1, 1, 1)
	if _, err := conv.Forward(tensor.New(1, 3, 8)); err == nil {
		t.Fatal("expected error for wrong channel count")
	}
	if _, err := conv.Forward(tensor.New(8)); err == nil {
		t.Fatal("expected error for non 3-D input")
	}
}

func TestConv1DOutputLength(t *testing.T) {
	conv := NewConv1D(1, 1, 15, 1, 1, 7)
	if got := conv.OutputLength(16384); got != 16384 {
		t.Fatalf("OutputLength = %d, want 16384", got)
	}
	unpadded := NewConv1D(1, 1, 3, 1, 1, 0)
	if got := unpadded.OutputLength(8); got != 6 {
		t.Fatalf("OutputLength = %d, want 6", got)
	}
}
