// Package solver implements the update-rule family of the training engine:
// momentum SGD, Adam, and RMSProp.
//
// A Solver is constructed once from the learnable-parameter set and turns
// (gradients, global learning rate) into a per-parameter update step. Steps
// are deltas ADDED to parameter values by the model; the sign convention is
// folded into each rule so a positive gradient always moves the value
// downhill.
//
// Example:
//
//	s, err := solver.New(model.Parameters(), solver.Options{
//	    Kind:     solver.SGDM,
//	    Momentum: 0.9,
//	})
//	steps := s.CalculateUpdate(grads, 0.01)
//	model = model.UpdateLearnableParameters(steps)
package solver

import (
	"fmt"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// Kind selects an update rule.
type Kind int

// Supported solver kinds.
const (
	SGDM Kind = iota
	Adam
	RMSProp
)

// String returns the config-surface name of the kind.
func (k Kind) String() string {
	switch k {
	case SGDM:
		return "sgdm"
	case Adam:
		return "adam"
	case RMSProp:
		return "rmsprop"
	default:
		return "unknown"
	}
}

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "sgdm":
		return SGDM, nil
	case "adam":
		return Adam, nil
	case "rmsprop":
		return RMSProp, nil
	default:
		return SGDM, fmt.Errorf("unsupported solver kind %q", s)
	}
}

// Precision controls how solver state is stored between iterations.
type Precision int

// Supported precisions.
const (
	// Double keeps state in full float64 precision.
	Double Precision = iota
	// Single rounds state through float32 after every update.
	Single
)

func (p Precision) round(x float64) float64 {
	if p == Single {
		return float64(float32(x))
	}
	return x
}

// Options configure a solver. Zero values fall back to the usual defaults
// for the selected kind.
type Options struct {
	Kind      Kind
	Precision Precision

	Momentum float64 // SGDM velocity decay
	Beta1    float64 // Adam first-moment decay (default 0.9)
	Beta2    float64 // Adam second-moment decay (default 0.999)
	Rho      float64 // RMSProp squared-gradient decay (default 0.9)
	Epsilon  float64 // denominator offset for Adam/RMSProp (default 1e-8)
}

// Solver turns gradients into per-parameter update steps.
//
// The returned slice is aligned with the parameter set: entry i is the
// delta to add to parameter i's value, or nil when the parameter is frozen
// (learn-rate factor zero) or has no gradient. Frozen or gradient-less
// parameters never advance solver state either.
type Solver interface {
	CalculateUpdate(grads []*tensor.Tensor, globalLearnRate float64) []*tensor.Tensor
}

// New builds the solver for opts.Kind over the given parameter set.
// An unrecognized kind is a configuration error.
func New(params []*nn.Parameter, opts Options) (Solver, error) {
	if opts.Epsilon == 0 {
		opts.Epsilon = 1e-8
	}
	switch opts.Kind {
	case SGDM:
		return newSGDM(params, opts), nil
	case Adam:
		if opts.Beta1 == 0 {
			opts.Beta1 = 0.9
		}
		if opts.Beta2 == 0 {
			opts.Beta2 = 0.999
		}
		return newAdam(params, opts), nil
	case RMSProp:
		if opts.Rho == 0 {
			opts.Rho = 0.9
		}
		return newRMSProp(params, opts), nil
	default:
		return nil, fmt.Errorf("unsupported solver kind %d", opts.Kind)
	}
}

// skip reports whether parameter i takes no step this iteration.
func skip(params []*nn.Parameter, grads []*tensor.Tensor, i int) bool {
	return params[i].LearnRateFactor == 0 || grads[i] == nil
}
