package solver

import (
	"math"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// rmsprop is the RMSProp update rule.
//
// Per parameter, with lr_i = globalLearnRate · LearnRateFactor_i:
//
//	s_i ← ρ·s_i + (1−ρ)·g²
//	step_i = −lr_i·g / (sqrt(s_i)+ε)
type rmsprop struct {
	params    []*nn.Parameter
	rho       float64
	eps       float64
	precision Precision

	s []*tensor.Tensor
}

func newRMSProp(params []*nn.Parameter, opts Options) *rmsprop {
	return &rmsprop{
		params:    params,
		rho:       opts.Rho,
		eps:       opts.Epsilon,
		precision: opts.Precision,
		s:         make([]*tensor.Tensor, len(params)),
	}
}

func (r *rmsprop) CalculateUpdate(grads []*tensor.Tensor, globalLearnRate float64) []*tensor.Tensor {
	steps := make([]*tensor.Tensor, len(r.params))
	for i, p := range r.params {
		if skip(r.params, grads, i) {
			continue
		}
		if r.s[i] == nil {
			r.s[i] = tensor.ZerosLike(p.Value())
		}

		lr := globalLearnRate * p.LearnRateFactor
		step := tensor.ZerosLike(p.Value())
		sd, gd, stepd := r.s[i].Data(), grads[i].Data(), step.Data()
		for j := range stepd {
			g := gd[j]
			sd[j] = r.precision.round(r.rho*sd[j] + (1-r.rho)*g*g)
			stepd[j] = -lr * g / (math.Sqrt(sd[j]) + r.eps)
		}
		steps[i] = step
	}
	return steps
}
