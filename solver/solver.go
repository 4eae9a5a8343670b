// Copyright 2025 Guided ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solver exposes the update-rule family: momentum SGD, Adam and
// RMSProp.
package solver

import (
	"github.com/guided-ml/guided/internal/nn"
	"github.com/guided-ml/guided/internal/solver"
)

// Solver turns gradients into per-parameter update steps.
type Solver = solver.Solver

// Kind selects an update rule.
type Kind = solver.Kind

// Supported solver kinds.
const (
	SGDM    = solver.SGDM
	Adam    = solver.Adam
	RMSProp = solver.RMSProp
)

// Precision controls how solver state is stored between iterations.
type Precision = solver.Precision

// Supported precisions.
const (
	Double = solver.Double
	Single = solver.Single
)

// Options configure a solver.
type Options = solver.Options

// New builds the solver for opts.Kind over the given parameter set.
//
// Example:
//
//	s, err := solver.New(model.Parameters(), solver.Options{
//	    Kind:     solver.Adam,
//	    Epsilon:  1e-8,
//	})
func New(params []*nn.Parameter, opts Options) (Solver, error) {
	return solver.New(params, opts)
}

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	return solver.ParseKind(s)
}
