package nn

import (
	"github.com/guided-ml/guided/internal/tensor"
)

// Model is the differentiable-model collaborator consumed by the trainer.
//
// The trainer never inspects model internals beyond these operations and
// the factors on the learnable-parameter set. Gradients and update steps
// are ordered slices aligned with Parameters(); a nil entry means "no
// gradient" / "no step" for that parameter.
//
// Update operations are functional: they return a new model value instead
// of mutating the receiver, and the trainer rebinds its model reference.
type Model interface {
	// ComputeGradients runs forward and backward passes for one mini-batch
	// and returns per-parameter gradients, the batch predictions, and any
	// propagated network state (nil for stateless models).
	ComputeGradients(x, y *tensor.Tensor, needsState, propagateState bool) (grads []*tensor.Tensor, pred *tensor.Tensor, state []*tensor.Tensor)

	// Loss computes the scalar training loss for predictions against targets.
	Loss(pred, y *tensor.Tensor) float64

	// UpdateLearnableParameters adds each non-nil step to the corresponding
	// parameter value and returns the updated model.
	UpdateLearnableParameters(steps []*tensor.Tensor) Model

	// UpdateNetworkState installs propagated state (e.g. recurrent hidden
	// state) and returns the updated model. Stateless models return the
	// receiver unchanged.
	UpdateNetworkState(state []*tensor.Tensor, needsState bool) Model

	// Parameters returns the learnable-parameter set in a stable order.
	Parameters() []*Parameter
}
