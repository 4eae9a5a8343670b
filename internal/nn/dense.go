package nn

import (
	"fmt"
	"math/rand"

	"github.com/guided-ml/guided/internal/tensor"
)

// Dense is a single fully connected layer with mean-squared-error loss,
// implementing Model with analytic gradients.
//
// It exists as the reference collaborator for examples and tests; real
// models live outside this module and only need to satisfy Model.
//
//	pred = x @ W.T + b
//	loss = 1/(2N) * Σ (pred - y)²
type Dense struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewDense creates a Dense model with normally distributed weights scaled
// by 1/sqrt(in) and zero biases. A nil rng uses the global source.
func NewDense(inFeatures, outFeatures int, rng *rand.Rand) *Dense {
	w := tensor.Randn(tensor.Shape{outFeatures, inFeatures}, rng)
	w.Scale(1.0 / float64(inFeatures))
	b := tensor.Zeros(tensor.Shape{outFeatures})

	return &Dense{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("dense.weight", w),
		bias:        NewParameter("dense.bias", b),
	}
}

// Parameters returns [weight, bias].
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// Forward computes predictions for x with shape [batch, in_features].
func (d *Dense) Forward(x *tensor.Tensor) *tensor.Tensor {
	batch := x.Shape()[0]
	pred := tensor.Zeros(tensor.Shape{batch, d.outFeatures})
	xd, wd, bd, pd := x.Data(), d.weight.Value().Data(), d.bias.Value().Data(), pred.Data()

	for b := 0; b < batch; b++ {
		for o := 0; o < d.outFeatures; o++ {
			sum := bd[o]
			for i := 0; i < d.inFeatures; i++ {
				sum += wd[o*d.inFeatures+i] * xd[b*d.inFeatures+i]
			}
			pd[b*d.outFeatures+o] = sum
		}
	}
	return pred
}

// ComputeGradients implements Model. Dense is stateless, so the returned
// state is always nil.
func (d *Dense) ComputeGradients(x, y *tensor.Tensor, needsState, propagateState bool) ([]*tensor.Tensor, *tensor.Tensor, []*tensor.Tensor) {
	batch := x.Shape()[0]
	pred := d.Forward(x)

	// delta = (pred - y) / N, the MSE loss gradient w.r.t. predictions.
	delta := pred.Clone()
	delta.AddScaled(-1, y)
	delta.Scale(1.0 / float64(batch))

	gradW := tensor.ZerosLike(d.weight.Value())
	gradB := tensor.ZerosLike(d.bias.Value())
	xd, dd, gw, gb := x.Data(), delta.Data(), gradW.Data(), gradB.Data()

	for b := 0; b < batch; b++ {
		for o := 0; o < d.outFeatures; o++ {
			dv := dd[b*d.outFeatures+o]
			gb[o] += dv
			for i := 0; i < d.inFeatures; i++ {
				gw[o*d.inFeatures+i] += dv * xd[b*d.inFeatures+i]
			}
		}
	}

	grads := []*tensor.Tensor{gradW, gradB}
	if d.weight.LearnRateFactor == 0 {
		grads[0] = nil
	}
	if d.bias.LearnRateFactor == 0 {
		grads[1] = nil
	}
	return grads, pred, nil
}

// Loss implements Model: 1/(2N)·Σ(pred−y)².
func (d *Dense) Loss(pred, y *tensor.Tensor) float64 {
	diff := pred.Clone()
	diff.AddScaled(-1, y)
	n := float64(pred.Shape()[0])
	return diff.SumSquares() / (2 * n)
}

// UpdateLearnableParameters implements Model, returning a new Dense with
// each non-nil step added to the corresponding parameter value.
func (d *Dense) UpdateLearnableParameters(steps []*tensor.Tensor) Model {
	if len(steps) != 2 {
		panic(fmt.Sprintf("dense: expected 2 steps, got %d", len(steps)))
	}
	next := &Dense{
		inFeatures:  d.inFeatures,
		outFeatures: d.outFeatures,
		weight:      d.weight.Clone(),
		bias:        d.bias.Clone(),
	}
	if steps[0] != nil {
		next.weight.Value().AddScaled(1, steps[0])
	}
	if steps[1] != nil {
		next.bias.Value().AddScaled(1, steps[1])
	}
	return next
}

// UpdateNetworkState implements Model. Dense carries no network state.
func (d *Dense) UpdateNetworkState(state []*tensor.Tensor, needsState bool) Model {
	return d
}
