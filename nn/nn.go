// Copyright 2025 Guided ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the learnable-parameter and model-collaborator types
// consumed by the training engine.
package nn

import (
	"math/rand"

	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/tensor"
)

// Parameter represents a learnable parameter with its per-parameter
// learn-rate and L2 factors.
type Parameter = nn.Parameter

// Model is the differentiable-model collaborator interface.
type Model = nn.Model

// Dense is the reference linear model with MSE loss.
type Dense = nn.Dense

// NewParameter creates a parameter with both factors set to 1.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, value)
}

// NewDense creates a Dense model with normally distributed weights.
//
// Example:
//
//	model := nn.NewDense(4, 1, nil)
//	trainer, err := train.New(model, train.DefaultConfig(), nil)
func NewDense(inFeatures, outFeatures int, rng *rand.Rand) *Dense {
	return nn.NewDense(inFeatures, outFeatures, rng)
}
