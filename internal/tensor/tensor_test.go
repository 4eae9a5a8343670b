package tensor

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestFromSlice(t *testing.T) {
	ten, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if !ten.Shape().Equal(Shape{2, 3}) {
		t.Errorf("shape: got %v, want [2 3]", ten.Shape())
	}
	if ten.NumElements() != 6 {
		t.Errorf("NumElements: got %d, want 6", ten.NumElements())
	}
	if ten.At(4) != 5 {
		t.Errorf("At(4): got %f, want 5", ten.At(4))
	}
}

func TestFromSlice_ShapeMismatch(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("expected error for mismatched shape, got nil")
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("expected error for zero dimension, got nil")
	}
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
}

func TestClone_Independent(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2}, Shape{2})
	b := a.Clone()
	b.Set(0, 99)
	if a.At(0) != 1 {
		t.Errorf("clone aliases original: got %f, want 1", a.At(0))
	}
}

func TestAddScaled(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{10, 20, 30}, Shape{3})
	a.AddScaled(0.1, b)
	want := []float64{2, 4, 6}
	for i, w := range want {
		if !almostEqual(a.At(i), w) {
			t.Errorf("AddScaled[%d]: got %f, want %f", i, a.At(i), w)
		}
	}
}

func TestNorm(t *testing.T) {
	a, _ := FromSlice([]float64{3, 4}, Shape{2})
	if !almostEqual(a.Norm(), 5) {
		t.Errorf("Norm: got %f, want 5", a.Norm())
	}
	if !almostEqual(a.SumSquares(), 25) {
		t.Errorf("SumSquares: got %f, want 25", a.SumSquares())
	}
}

func TestClamp(t *testing.T) {
	a, _ := FromSlice([]float64{-2, -0.5, 0.5, 2}, Shape{4})
	a.Clamp(1)
	want := []float64{-1, -0.5, 0.5, 1}
	for i, w := range want {
		if a.At(i) != w {
			t.Errorf("Clamp[%d]: got %f, want %f", i, a.At(i), w)
		}
	}
}
