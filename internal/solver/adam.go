package solver

import (
	"math"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// adam is the Adam update rule.
//
// A single update counter t is shared across all parameters and advances
// once per CalculateUpdate call. Per parameter, with
// lr_i = globalLearnRate · LearnRateFactor_i:
//
//	m_i ← β1·m_i + (1−β1)·g
//	s_i ← β2·s_i + (1−β2)·g²
//	shrink = sqrt(1−β2^t) / (1−β1^t)
//	step_i = −shrink·lr_i·m_i / (sqrt(s_i)+ε)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
type adam struct {
	params    []*nn.Parameter
	beta1     float64
	beta2     float64
	eps       float64
	precision Precision

	t int // update counter, shared across parameters
	m []*tensor.Tensor
	s []*tensor.Tensor
}

func newAdam(params []*nn.Parameter, opts Options) *adam {
	return &adam{
		params:    params,
		beta1:     opts.Beta1,
		beta2:     opts.Beta2,
		eps:       opts.Epsilon,
		precision: opts.Precision,
		m:         make([]*tensor.Tensor, len(params)),
		s:         make([]*tensor.Tensor, len(params)),
	}
}

func (a *adam) CalculateUpdate(grads []*tensor.Tensor, globalLearnRate float64) []*tensor.Tensor {
	a.t++
	shrink := math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))

	steps := make([]*tensor.Tensor, len(a.params))
	for i, p := range a.params {
		if skip(a.params, grads, i) {
			continue
		}
		if a.m[i] == nil {
			a.m[i] = tensor.ZerosLike(p.Value())
			a.s[i] = tensor.ZerosLike(p.Value())
		}

		lr := globalLearnRate * p.LearnRateFactor
		step := tensor.ZerosLike(p.Value())
		md, sd, gd, stepd := a.m[i].Data(), a.s[i].Data(), grads[i].Data(), step.Data()
		for j := range stepd {
			g := gd[j]
			md[j] = a.precision.round(a.beta1*md[j] + (1-a.beta1)*g)
			sd[j] = a.precision.round(a.beta2*sd[j] + (1-a.beta2)*g*g)
			stepd[j] = -shrink * lr * md[j] / (math.Sqrt(sd[j]) + a.eps)
		}
		steps[i] = step
	}
	return steps
}
