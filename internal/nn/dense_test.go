package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/guided-ml/guided/internal/tensor"
)

func TestDense_Forward(t *testing.T) {
	d := NewDense(2, 1, rand.New(rand.NewSource(1)))
	// Fix weights: pred = 2*x0 - x1 + 0.5
	copy(d.weight.Value().Data(), []float64{2, -1})
	copy(d.bias.Value().Data(), []float64{0.5})

	x, _ := tensor.FromSlice([]float64{1, 1, 3, 0}, tensor.Shape{2, 2})
	pred := d.Forward(x)

	want := []float64{1.5, 6.5}
	for i, w := range want {
		if math.Abs(pred.At(i)-w) > 1e-12 {
			t.Errorf("pred[%d]: got %f, want %f", i, pred.At(i), w)
		}
	}
}

// Numeric gradient check for the analytic ComputeGradients.
func TestDense_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := NewDense(3, 2, rng)
	x := tensor.Randn(tensor.Shape{4, 3}, rng)
	y := tensor.Randn(tensor.Shape{4, 2}, rng)

	grads, _, _ := d.ComputeGradients(x, y, false, false)

	const h = 1e-6
	for pi, p := range d.Parameters() {
		data := p.Value().Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + h
			lossPlus := d.Loss(d.Forward(x), y)
			data[i] = orig - h
			lossMinus := d.Loss(d.Forward(x), y)
			data[i] = orig

			numeric := (lossPlus - lossMinus) / (2 * h)
			analytic := grads[pi].At(i)
			if math.Abs(numeric-analytic) > 1e-5 {
				t.Errorf("param %d elem %d: analytic %f, numeric %f", pi, i, analytic, numeric)
			}
		}
	}
}

func TestDense_UpdateReturnsNewModel(t *testing.T) {
	d := NewDense(1, 1, rand.New(rand.NewSource(7)))
	before := d.weight.Value().At(0)

	step, _ := tensor.FromSlice([]float64{-0.5}, tensor.Shape{1, 1})
	updated := d.UpdateLearnableParameters([]*tensor.Tensor{step, nil})

	if d.weight.Value().At(0) != before {
		t.Error("UpdateLearnableParameters mutated the receiver")
	}
	got := updated.Parameters()[0].Value().At(0)
	if math.Abs(got-(before-0.5)) > 1e-12 {
		t.Errorf("updated weight: got %f, want %f", got, before-0.5)
	}
}

func TestDense_FrozenParameterHasNilGradient(t *testing.T) {
	d := NewDense(2, 1, rand.New(rand.NewSource(3)))
	d.bias.LearnRateFactor = 0

	x := tensor.Zeros(tensor.Shape{1, 2})
	y := tensor.Zeros(tensor.Shape{1, 1})
	grads, _, _ := d.ComputeGradients(x, y, false, false)

	if grads[1] != nil {
		t.Error("frozen bias should yield nil gradient")
	}
	if grads[0] == nil {
		t.Error("live weight should yield a gradient")
	}
}
