// Package regularize implements weight regularization for the training
// engine. Only L2 (ridge) regularization is supported; the effective
// strength per parameter is its local L2 factor times the global factor,
// fixed at construction.
package regularize

import (
	"fmt"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// Kind selects a regularizer variant.
type Kind int

// Supported regularizer kinds.
const (
	KindNone Kind = iota
	KindL2
)

// String returns the config-surface name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindL2:
		return "l2"
	default:
		return "unknown"
	}
}

// Regularizer adds a weighted penalty to the loss and its gradients.
type Regularizer interface {
	// Loss returns loss plus the penalty term over the parameter set.
	Loss(loss float64, params []*nn.Parameter) float64
	// Gradients adds each parameter's penalty gradient to grads in place.
	// Entries whose parameter has a zero learn-rate factor, or whose
	// gradient is nil, are left untouched.
	Gradients(grads []*tensor.Tensor, params []*nn.Parameter)
}

// New builds the regularizer for kind, precomputing per-parameter
// effective factors. An unrecognized kind is a configuration error.
func New(kind Kind, params []*nn.Parameter, globalFactor float64) (Regularizer, error) {
	switch kind {
	case KindNone:
		return noop{}, nil
	case KindL2:
		eff := make([]float64, len(params))
		for i, p := range params {
			eff[i] = p.L2Factor * globalFactor
		}
		return &l2{factors: eff}, nil
	default:
		return nil, fmt.Errorf("unsupported regularizer kind %d", kind)
	}
}

type noop struct{}

func (noop) Loss(loss float64, params []*nn.Parameter) float64 { return loss }
func (noop) Gradients(grads []*tensor.Tensor, params []*nn.Parameter) {}

// l2 holds the per-parameter effective factor (local × global), computed
// once at construction and read-only thereafter.
type l2 struct {
	factors []float64
}

// Loss returns loss + 0.5·Σ eff_i·‖value_i‖².
func (r *l2) Loss(loss float64, params []*nn.Parameter) float64 {
	for i, p := range params {
		if r.factors[i] == 0 {
			continue
		}
		loss += 0.5 * r.factors[i] * p.Value().SumSquares()
	}
	return loss
}

// Gradients performs grads_i += eff_i · value_i for every parameter with a
// nonzero learn-rate factor and a present gradient.
func (r *l2) Gradients(grads []*tensor.Tensor, params []*nn.Parameter) {
	for i, p := range params {
		if p.LearnRateFactor == 0 || grads[i] == nil || r.factors[i] == 0 {
			continue
		}
		grads[i].AddScaled(r.factors[i], p.Value())
	}
}
