// Copyright 2025 Guided ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the engine's dense float64 tensor type.
package tensor

import (
	"math/rand"

	"github.com/guided-ml/guided/internal/tensor"
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense, row-major float64 tensor held in host memory.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	w, err := tensor.FromSlice([]float64{0.5, -0.25}, tensor.Shape{2})
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return tensor.ZerosLike(t)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with standard-normal elements.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, rng)
}
