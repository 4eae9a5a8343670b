// Package train implements the mini-batch training control loop: a plain
// SGD mode and a guided (GSGD) mode that scores each batch's consistency
// against held-out verification batches and periodically replays the
// most consistent ones.
//
// The trainer orchestrates external collaborators through narrow
// interfaces: a Model computes gradients and applies updates, a Dispatcher
// yields mini-batches, a Reporter receives progress. Per iteration the
// gradient set flows regularizer → thresholder → solver → model update.
package train

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/guided-ml/guided/internal/clip"
	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/regularize"
	"github.com/guided-ml/guided/internal/sched"
	"github.com/guided-ml/guided/internal/solver"
	"github.com/guided-ml/guided/internal/tensor"
)

// Dispatcher is the mini-batch iteration collaborator.
//
// Start rewinds to the first batch, Shuffle permutes example order, Next
// yields the next (X, Y) pair, Done reports exhaustion for the epoch. How
// a remainder batch smaller than the mini-batch size is handled is the
// dispatcher's own policy.
type Dispatcher interface {
	Start()
	Shuffle()
	Next() (x, y *tensor.Tensor)
	Done() bool
}

// Trainer runs the training loop. All of its mutable state — the model
// reference, the solver's moving averages, the guided-mode buffers, the
// iteration counters — is owned exclusively by one Train call at a time;
// the core is single-threaded and Trainer is not safe for concurrent use.
type Trainer struct {
	cfg        Config
	model      nn.Model
	sol        solver.Solver
	reg        regularize.Regularizer
	clipMethod clip.Method
	schedule   sched.Schedule
	rng        *rand.Rand

	learnRate float64
	iteration int
}

// New validates cfg and constructs a trainer over the model's parameter
// set. A nil schedule keeps the learning rate constant. All configuration
// errors (unknown solver, regularizer or threshold method, guided mode
// without its required options) surface here, before training starts.
func New(model nn.Model, cfg Config, schedule sched.Schedule) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind, err := solver.ParseKind(cfg.Solver)
	if err != nil {
		return nil, err
	}
	precision, err := parsePrecision(cfg.Precision)
	if err != nil {
		return nil, err
	}
	sol, err := solver.New(model.Parameters(), solver.Options{
		Kind:      kind,
		Precision: precision,
		Momentum:  cfg.Momentum,
		Beta1:     cfg.GradientDecayFactor,
		Beta2:     cfg.SquaredGradientDecayFactor,
		Rho:       cfg.SquaredGradientDecayFactor,
		Epsilon:   cfg.Epsilon,
	})
	if err != nil {
		return nil, err
	}

	regKind, err := parseRegularizer(cfg.Regularizer)
	if err != nil {
		return nil, err
	}
	reg, err := regularize.New(regKind, model.Parameters(), cfg.L2Regularization)
	if err != nil {
		return nil, err
	}

	method, err := clip.ParseMethod(cfg.GradientThresholdMethod)
	if err != nil {
		return nil, err
	}

	if schedule == nil {
		schedule = sched.None{}
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Trainer{
		cfg:        cfg,
		model:      model,
		sol:        sol,
		reg:        reg,
		clipMethod: method,
		schedule:   schedule,
		rng:        rng,
	}, nil
}

// Train runs up to MaxEpochs over the dispatcher's data and returns the
// trained model. A nil reporter discards progress.
//
// Cancellation is cooperative: ctx is observed at iteration and epoch
// boundaries only, an in-flight step always completes, and the returned
// model carries whatever updates accumulated before the stop. The context
// error is returned alongside it so callers can tell a stopped run from a
// finished one.
func (t *Trainer) Train(ctx context.Context, d Dispatcher, rep Reporter) (nn.Model, error) {
	if rep == nil {
		rep = NopReporter{}
	}
	t.learnRate = t.cfg.InitialLearnRate
	t.iteration = 0

	run := &RunSummary{RunID: uuid.NewString()}
	started := time.Now()
	rep.Start()

	var g *gsgdState
	if t.cfg.Guided {
		g = newGSGDState(t.cfg.Rho)
	}

	var lastLoss float64
	stopped := false
	epoch := 0
	for epoch = 1; epoch <= t.cfg.MaxEpochs && !stopped; epoch++ {
		t.shuffleForEpoch(d, epoch)
		d.Start()

		if t.cfg.Guided {
			lastLoss, stopped = t.runGuidedEpoch(ctx, d, rep, g, epoch)
		} else {
			lastLoss, stopped = t.runPlainEpoch(ctx, d, rep, epoch)
		}

		t.learnRate = t.schedule.Update(t.learnRate, epoch)
		rep.ReportEpoch(epoch, t.iteration, t.model)
	}

	run.Epochs = epoch - 1
	run.Iterations = t.iteration
	run.FinalLoss = lastLoss
	run.Elapsed = time.Since(started)
	run.Stopped = stopped
	rep.Finish(run, t.model)

	if stopped {
		return t.model, ctx.Err()
	}
	return t.model, nil
}

// Model returns the trainer's current model reference.
func (t *Trainer) Model() nn.Model {
	return t.model
}

// Iteration returns the global iteration counter of the current run.
func (t *Trainer) Iteration() int {
	return t.iteration
}

// LearnRate returns the current global learning rate.
func (t *Trainer) LearnRate() float64 {
	return t.learnRate
}

func (t *Trainer) shuffleForEpoch(d Dispatcher, epoch int) {
	switch t.cfg.Shuffle {
	case ShuffleOnce:
		if epoch == 1 {
			d.Shuffle()
		}
	case ShuffleEveryEpoch:
		d.Shuffle()
	}
}

// runPlainEpoch executes the baseline loop for one epoch and returns the
// last reported loss and whether a stop was requested.
func (t *Trainer) runPlainEpoch(ctx context.Context, d Dispatcher, rep Reporter, epoch int) (float64, bool) {
	var lastLoss float64
	for !d.Done() {
		if ctx.Err() != nil {
			return lastLoss, true
		}
		x, y := d.Next()
		lastLoss = t.reportedStep(x, y, rep, epoch)
	}
	return lastLoss, false
}

// step runs one full optimization pass for a batch: gradients → loss →
// regularize → threshold → solver → model update. It returns the
// regularized loss and leaves reporting and counters to the caller.
func (t *Trainer) step(x, y *tensor.Tensor) float64 {
	grads, pred, state := t.model.ComputeGradients(x, y, true, true)
	params := t.model.Parameters()

	loss := t.model.Loss(pred, y)
	loss = t.reg.Loss(loss, params)
	t.reg.Gradients(grads, params)
	// Method was validated at construction; Threshold cannot fail here.
	_ = clip.Threshold(grads, t.clipMethod, t.cfg.GradientThreshold)

	steps := t.sol.CalculateUpdate(grads, t.learnRate)
	t.model = t.model.UpdateLearnableParameters(steps)
	t.model = t.model.UpdateNetworkState(state, true)
	return loss
}

// reportedStep is a primary update: it advances the iteration counter and
// feeds the reporter. Guided-replay updates go through step directly.
func (t *Trainer) reportedStep(x, y *tensor.Tensor, rep Reporter, epoch int) float64 {
	iterStart := time.Now()
	loss := t.step(x, y)
	t.iteration++

	s := &IterationSummary{
		Epoch:     epoch,
		Iteration: t.iteration,
		Loss:      loss,
		LearnRate: t.learnRate,
		Elapsed:   time.Since(iterStart),
	}
	if t.cfg.ValidationFrequency > 0 && t.iteration%t.cfg.ValidationFrequency == 0 {
		rep.ComputeIteration(s, t.model)
	}
	rep.ReportIteration(s)
	return loss
}

// evalLoss runs a forward pass only — no parameter or state update — and
// returns the raw (unregularized) loss for the batch.
func (t *Trainer) evalLoss(x, y *tensor.Tensor) float64 {
	_, pred, _ := t.model.ComputeGradients(x, y, false, false)
	return t.model.Loss(pred, y)
}
