package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// In-place vector arithmetic over the flat data. These are the only
// operations the optimization path needs; everything else is the model
// collaborator's business.

// AddScaled performs t += alpha * other, element-wise.
// Panics if the element counts differ.
func (t *Tensor) AddScaled(alpha float64, other *Tensor) {
	floats.AddScaled(t.data, alpha, other.data)
}

// Scale performs t *= alpha, element-wise.
func (t *Tensor) Scale(alpha float64) {
	floats.Scale(alpha, t.data)
}

// Norm returns the L2 norm of the flattened tensor.
func (t *Tensor) Norm() float64 {
	return floats.Norm(t.data, 2)
}

// SumSquares returns Σ x². Cheaper than Norm()² and exact for the
// regularizer's penalty term.
func (t *Tensor) SumSquares() float64 {
	return floats.Dot(t.data, t.data)
}

// Clamp limits every element to [-limit, limit] in place.
func (t *Tensor) Clamp(limit float64) {
	for i, v := range t.data {
		t.data[i] = math.Max(-limit, math.Min(limit, v))
	}
}
