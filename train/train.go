// Copyright 2025 Guided ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train exposes the training control loop: plain mini-batch SGD
// and the guided (GSGD) mode with consistency tracking and batch replay.
//
// Example:
//
//	cfg := train.DefaultConfig()
//	cfg.Guided = true
//	cfg.Rho = 7
//	cfg.RevisitBatchNum = 2
//	cfg.VerificationSetNum = 4
//
//	trainer, err := train.New(model, cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	trained, err := trainer.Train(ctx, dispatcher, &train.ConsoleReporter{Every: 50})
package train

import (
	"math/rand"

	"github.com/guided-ml/guided/internal/data"
	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/sched"
	"github.com/guided-ml/guided/internal/tensor"
	"github.com/guided-ml/guided/internal/train"
)

// Trainer runs the training loop over a model, dispatcher and reporter.
type Trainer = train.Trainer

// Config is the full set of recognized training options.
type Config = train.Config

// Dispatcher is the mini-batch iteration collaborator.
type Dispatcher = train.Dispatcher

// Reporter receives progress from the trainer.
type Reporter = train.Reporter

// IterationSummary describes one primary optimization step.
type IterationSummary = train.IterationSummary

// RunSummary describes a whole Train call.
type RunSummary = train.RunSummary

// ConsoleReporter logs progress with the standard library logger.
type ConsoleReporter = train.ConsoleReporter

// NopReporter discards all progress.
type NopReporter = train.NopReporter

// Schedule maps (current rate, epoch) to the next epoch's learning rate.
type Schedule = sched.Schedule

// StepDecay multiplies the rate by Factor every Period epochs.
type StepDecay = sched.StepDecay

// Piecewise looks the next rate up in a fixed epoch → rate table.
type Piecewise = sched.Piecewise

// Shuffle policies for the training data between epochs.
const (
	ShuffleNever      = train.ShuffleNever
	ShuffleOnce       = train.ShuffleOnce
	ShuffleEveryEpoch = train.ShuffleEveryEpoch
)

// RemainderPolicy governs a final batch smaller than the mini-batch size.
type RemainderPolicy = data.RemainderPolicy

// Supported remainder policies.
const (
	TruncateLast = data.TruncateLast
	DiscardLast  = data.DiscardLast
)

// InMemoryDispatcher dispatches mini-batches from tensors held in memory.
type InMemoryDispatcher = data.InMemory

// New validates cfg and constructs a trainer over the model's parameter
// set. A nil schedule keeps the learning rate constant.
func New(model nn.Model, cfg Config, schedule Schedule) (*Trainer, error) {
	return train.New(model, cfg, schedule)
}

// DefaultConfig returns the baseline options: plain SGDM at rate 0.01.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return train.LoadConfig(path)
}

// NewStepDecay validates and builds a StepDecay schedule.
func NewStepDecay(factor float64, period int) (StepDecay, error) {
	return sched.NewStepDecay(factor, period)
}

// NewInMemoryDispatcher builds a dispatcher over in-memory (X, Y) tensors.
func NewInMemoryDispatcher(x, y *tensor.Tensor, batchSize int, policy RemainderPolicy, rng *rand.Rand) (*InMemoryDispatcher, error) {
	return data.NewInMemory(x, y, batchSize, policy, rng)
}
