package solver

import (
	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// sgdm is stochastic gradient descent with momentum.
//
// Per parameter, with lr_i = globalLearnRate · LearnRateFactor_i:
//
//	v_i ← momentum·v_i − lr_i·gradient_i
//	step_i = v_i
type sgdm struct {
	params     []*nn.Parameter
	momentum   float64
	precision  Precision
	velocities []*tensor.Tensor // lazily allocated per parameter
}

func newSGDM(params []*nn.Parameter, opts Options) *sgdm {
	return &sgdm{
		params:     params,
		momentum:   opts.Momentum,
		precision:  opts.Precision,
		velocities: make([]*tensor.Tensor, len(params)),
	}
}

func (s *sgdm) CalculateUpdate(grads []*tensor.Tensor, globalLearnRate float64) []*tensor.Tensor {
	steps := make([]*tensor.Tensor, len(s.params))
	for i, p := range s.params {
		if skip(s.params, grads, i) {
			continue
		}
		v := s.velocities[i]
		if v == nil {
			v = tensor.ZerosLike(p.Value())
			s.velocities[i] = v
		}

		lr := globalLearnRate * p.LearnRateFactor
		vd, gd := v.Data(), grads[i].Data()
		for j := range vd {
			vd[j] = s.precision.round(s.momentum*vd[j] - lr*gd[j])
		}
		steps[i] = v.Clone()
	}
	return steps
}
