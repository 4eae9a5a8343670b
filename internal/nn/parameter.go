package nn

import (
	"github.com/guided-ml/guided/internal/tensor"
)

// Parameter represents a learnable parameter of a differentiable model.
//
// Parameters carry two per-parameter factors read by the training engine:
//
//   - LearnRateFactor scales the global learning rate for this parameter.
//     A factor of zero freezes the parameter: the solver produces no step
//     for it and its solver state never advances.
//   - L2Factor scales the global L2 regularization strength for this
//     parameter.
//
// Example:
//
//	w := nn.NewParameter("dense.weight", weightTensor)
//	w.L2Factor = 0 // exclude bias-like parameters from weight decay
type Parameter struct {
	name  string
	value *tensor.Tensor

	// LearnRateFactor multiplies the global learning rate (default 1).
	LearnRateFactor float64
	// L2Factor multiplies the global L2 regularization factor (default 1).
	L2Factor float64
}

// NewParameter creates a parameter with both factors set to 1.
//
// The value tensor should be initialized before creating the Parameter.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:            name,
		value:           value,
		LearnRateFactor: 1,
		L2Factor:        1,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter's value tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Clone returns a deep copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	return &Parameter{
		name:            p.name,
		value:           p.value.Clone(),
		LearnRateFactor: p.LearnRateFactor,
		L2Factor:        p.L2Factor,
	}
}
