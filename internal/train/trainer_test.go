package train

import (
	"context"
	"math"
	"testing"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/sched"
	"github.com/guided-ml/guided/internal/tensor"
)

// stubModel is a single-scalar-parameter model with a constant gradient of
// 1.0 and loss equal to the current parameter value. It mutates in place
// (returning the receiver) so tests can keep counting through rebinds.
type stubModel struct {
	param   *nn.Parameter
	updates int // parameter-update count, primary and replay alike
}

func newStubModel(initial float64) *stubModel {
	v, _ := tensor.FromSlice([]float64{initial}, tensor.Shape{1})
	return &stubModel{param: nn.NewParameter("w", v)}
}

func (m *stubModel) ComputeGradients(x, y *tensor.Tensor, needsState, propagateState bool) ([]*tensor.Tensor, *tensor.Tensor, []*tensor.Tensor) {
	grad, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1})
	return []*tensor.Tensor{grad}, m.param.Value().Clone(), nil
}

func (m *stubModel) Loss(pred, y *tensor.Tensor) float64 {
	return pred.At(0)
}

func (m *stubModel) UpdateLearnableParameters(steps []*tensor.Tensor) nn.Model {
	if steps[0] != nil {
		m.param.Value().AddScaled(1, steps[0])
	}
	m.updates++
	return m
}

func (m *stubModel) UpdateNetworkState(state []*tensor.Tensor, needsState bool) nn.Model {
	return m
}

func (m *stubModel) Parameters() []*nn.Parameter {
	return []*nn.Parameter{m.param}
}

// fixedDispatcher yields n identical unit batches per epoch.
type fixedDispatcher struct {
	n        int
	cursor   int
	shuffles int
}

func (d *fixedDispatcher) Start()   { d.cursor = 0 }
func (d *fixedDispatcher) Shuffle() { d.shuffles++ }
func (d *fixedDispatcher) Done() bool {
	return d.cursor >= d.n
}
func (d *fixedDispatcher) Next() (*tensor.Tensor, *tensor.Tensor) {
	d.cursor++
	x := tensor.Zeros(tensor.Shape{1, 1})
	y := tensor.Zeros(tensor.Shape{1, 1})
	return x, y
}

// recordingReporter captures every callback.
type recordingReporter struct {
	started    bool
	iterations []IterationSummary
	epochs     []int
	computed   int
	run        *RunSummary

	onIteration func(s *IterationSummary) // optional hook
}

func (r *recordingReporter) Start() { r.started = true }
func (r *recordingReporter) ComputeIteration(s *IterationSummary, m nn.Model) {
	r.computed++
}
func (r *recordingReporter) ReportIteration(s *IterationSummary) {
	r.iterations = append(r.iterations, *s)
	if r.onIteration != nil {
		r.onIteration(s)
	}
}
func (r *recordingReporter) ReportEpoch(epoch, iteration int, m nn.Model) {
	r.epochs = append(r.epochs, epoch)
}
func (r *recordingReporter) Finish(s *RunSummary, m nn.Model) { r.run = s }

func plainConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialLearnRate = 0.1
	cfg.MaxEpochs = 1
	cfg.MiniBatchSize = 1
	cfg.Momentum = 0.9
	cfg.Regularizer = "none"
	cfg.GradientThresholdMethod = "none"
	cfg.Shuffle = ShuffleNever
	cfg.Seed = 1
	return cfg
}

// Momentum-SGD end to end: with a constant unit gradient and lr 0.1, the
// velocity compounds geometrically at ratio 0.9 (-0.1, -0.19, -0.271) and
// each velocity is applied to the parameter in turn.
func TestPlain_MomentumEndToEnd(t *testing.T) {
	model := newStubModel(5)
	tr, err := New(model, plainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	trained, err := tr.Train(context.Background(), &fixedDispatcher{n: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := 5 - (0.1 + 0.19 + 0.271)
	got := trained.Parameters()[0].Value().At(0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("trained value: got %f, want %f", got, want)
	}
}

func TestPlain_ReporterSequence(t *testing.T) {
	cfg := plainConfig()
	cfg.MaxEpochs = 2
	model := newStubModel(0)
	tr, _ := New(model, cfg, nil)
	rep := &recordingReporter{}

	_, err := tr.Train(context.Background(), &fixedDispatcher{n: 3}, rep)
	if err != nil {
		t.Fatal(err)
	}

	if !rep.started {
		t.Error("Start was never called")
	}
	if len(rep.iterations) != 6 {
		t.Errorf("iterations reported: got %d, want 6", len(rep.iterations))
	}
	for i, s := range rep.iterations {
		if s.Iteration != i+1 {
			t.Errorf("iteration %d misnumbered as %d", i+1, s.Iteration)
		}
	}
	if len(rep.epochs) != 2 {
		t.Errorf("epochs reported: got %v, want [1 2]", rep.epochs)
	}
	if rep.run == nil || rep.run.RunID == "" {
		t.Error("Finish did not carry a run ID")
	}
	if rep.run.Iterations != 6 {
		t.Errorf("run iterations: got %d, want 6", rep.run.Iterations)
	}
}

func TestPlain_ValidationFrequencyGatesComputeIteration(t *testing.T) {
	cfg := plainConfig()
	cfg.ValidationFrequency = 2
	tr, _ := New(newStubModel(0), cfg, nil)
	rep := &recordingReporter{}

	tr.Train(context.Background(), &fixedDispatcher{n: 5}, rep)

	if rep.computed != 2 { // iterations 2 and 4
		t.Errorf("ComputeIteration calls: got %d, want 2", rep.computed)
	}
}

func TestPlain_CancellationStopsAtIterationBoundary(t *testing.T) {
	cfg := plainConfig()
	cfg.MaxEpochs = 10
	model := newStubModel(0)
	tr, _ := New(model, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	rep := &recordingReporter{}
	rep.onIteration = func(s *IterationSummary) {
		if s.Iteration == 4 {
			cancel()
		}
	}

	trained, err := tr.Train(ctx, &fixedDispatcher{n: 100}, rep)
	if err == nil {
		t.Fatal("expected the context error from a stopped run")
	}
	if trained == nil {
		t.Fatal("stopped run must still return the accumulated model")
	}
	// The in-flight step completed; nothing ran after the boundary check.
	if len(rep.iterations) != 4 {
		t.Errorf("iterations before stop: got %d, want 4", len(rep.iterations))
	}
	if model.updates != 4 {
		t.Errorf("updates before stop: got %d, want 4", model.updates)
	}
	if rep.run == nil || !rep.run.Stopped {
		t.Error("run summary should be flagged as stopped")
	}
}

func TestScheduleAdvancesOncePerEpoch(t *testing.T) {
	cfg := plainConfig()
	cfg.MaxEpochs = 3
	decay, _ := sched.NewStepDecay(0.5, 1)
	tr, _ := New(newStubModel(0), cfg, decay)
	rep := &recordingReporter{}

	tr.Train(context.Background(), &fixedDispatcher{n: 2}, rep)

	// Rates seen by iterations: epoch 1 at 0.1, epoch 2 at 0.05, epoch 3 at 0.025.
	wantRates := []float64{0.1, 0.1, 0.05, 0.05, 0.025, 0.025}
	for i, s := range rep.iterations {
		if math.Abs(s.LearnRate-wantRates[i]) > 1e-12 {
			t.Errorf("iteration %d rate: got %f, want %f", i+1, s.LearnRate, wantRates[i])
		}
	}
	if math.Abs(tr.LearnRate()-0.0125) > 1e-12 {
		t.Errorf("final rate: got %f, want 0.0125", tr.LearnRate())
	}
}

func TestShufflePolicies(t *testing.T) {
	cases := []struct {
		policy       string
		epochs       int
		wantShuffles int
	}{
		{ShuffleNever, 3, 0},
		{ShuffleOnce, 3, 1},
		{ShuffleEveryEpoch, 3, 3},
	}
	for _, c := range cases {
		cfg := plainConfig()
		cfg.Shuffle = c.policy
		cfg.MaxEpochs = c.epochs
		tr, _ := New(newStubModel(0), cfg, nil)
		d := &fixedDispatcher{n: 1}
		tr.Train(context.Background(), d, nil)
		if d.shuffles != c.wantShuffles {
			t.Errorf("%s: got %d shuffles, want %d", c.policy, d.shuffles, c.wantShuffles)
		}
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Solver = "newton" },
		func(c *Config) { c.Regularizer = "l3" },
		func(c *Config) { c.GradientThresholdMethod = "soft" },
		func(c *Config) { c.InitialLearnRate = 0 },
		func(c *Config) { c.Momentum = 1 },
		func(c *Config) { c.Guided = true }, // missing rho etc.
	}
	for i, mutate := range bad {
		cfg := plainConfig()
		mutate(&cfg)
		if _, err := New(newStubModel(0), cfg, nil); err == nil {
			t.Errorf("case %d: expected a configuration error", i)
		}
	}
}
