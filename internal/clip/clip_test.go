package clip

import (
	"math"
	"testing"

	"github.com/guided-ml/guided/internal/tensor"
)

func grad(t *testing.T, values ...float64) *tensor.Tensor {
	t.Helper()
	g, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestThreshold_None(t *testing.T) {
	g := grad(t, 100, -100)
	if err := Threshold([]*tensor.Tensor{g}, None, 1); err != nil {
		t.Fatal(err)
	}
	if g.At(0) != 100 || g.At(1) != -100 {
		t.Error("None must not change gradients")
	}
}

func TestThreshold_GlobalL2Norm(t *testing.T) {
	// Combined norm = sqrt(9+16) = 5, limit 1 → scale by 0.2.
	a := grad(t, 3)
	b := grad(t, 4)
	if err := Threshold([]*tensor.Tensor{a, nil, b}, GlobalL2Norm, 1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.At(0)-0.6) > 1e-12 || math.Abs(b.At(0)-0.8) > 1e-12 {
		t.Errorf("global clip: got %f, %f, want 0.6, 0.8", a.At(0), b.At(0))
	}
}

func TestThreshold_GlobalL2Norm_UnderLimit(t *testing.T) {
	a := grad(t, 0.3, 0.4)
	Threshold([]*tensor.Tensor{a}, GlobalL2Norm, 1)
	if a.At(0) != 0.3 || a.At(1) != 0.4 {
		t.Error("gradient under the limit must pass through unchanged")
	}
}

func TestThreshold_PerParameterL2Norm(t *testing.T) {
	// a has norm 5 → rescaled; b has norm 0.5 → untouched.
	a := grad(t, 3, 4)
	b := grad(t, 0.5)
	if err := Threshold([]*tensor.Tensor{a, b}, L2Norm, 1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.Norm()-1) > 1e-12 {
		t.Errorf("per-parameter clip: norm %f, want 1", a.Norm())
	}
	if b.At(0) != 0.5 {
		t.Errorf("small gradient rescaled: %f", b.At(0))
	}
}

func TestThreshold_AbsoluteValue(t *testing.T) {
	a := grad(t, -3, 0.2, 7)
	if err := Threshold([]*tensor.Tensor{a}, AbsoluteValue, 1); err != nil {
		t.Fatal(err)
	}
	want := []float64{-1, 0.2, 1}
	for i, w := range want {
		if a.At(i) != w {
			t.Errorf("clamp[%d]: got %f, want %f", i, a.At(i), w)
		}
	}
}

func TestThreshold_Deterministic(t *testing.T) {
	a := grad(t, 3, 4)
	b := a.Clone()
	Threshold([]*tensor.Tensor{a}, GlobalL2Norm, 2)
	Threshold([]*tensor.Tensor{b}, GlobalL2Norm, 2)
	for i := 0; i < a.NumElements(); i++ {
		if a.At(i) != b.At(i) {
			t.Errorf("nondeterministic clip at %d: %f vs %f", i, a.At(i), b.At(i))
		}
	}
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"":               None,
		"none":           None,
		"global-l2norm":  GlobalL2Norm,
		"l2norm":         L2Norm,
		"absolute-value": AbsoluteValue,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q): got %v, %v", in, got, err)
		}
	}
	if _, err := ParseMethod("soft-relu"); err == nil {
		t.Error("expected error for unknown method")
	}
}
