// Package data provides an in-memory mini-batch dispatcher over a fixed
// (X, Y) example set. The trainer only depends on the dispatcher interface;
// this implementation exists for examples, tests, and the CLI.
package data

import (
	"fmt"
	"math/rand"

	"github.com/guided-ml/guided/internal/tensor"
)

// RemainderPolicy governs the batch left over when the number of examples
// is not a multiple of the mini-batch size.
type RemainderPolicy int

// Supported remainder policies.
const (
	// TruncateLast yields the remainder as a final, smaller batch.
	TruncateLast RemainderPolicy = iota
	// DiscardLast drops the remainder; every batch is full size.
	DiscardLast
)

// InMemory dispatches mini-batches from tensors held in memory.
//
// X has shape [n, xFeatures] and Y has shape [n, yFeatures]; rows are
// paired by index. Shuffle permutes the row order; Start rewinds to the
// first batch without reshuffling.
type InMemory struct {
	x, y      *tensor.Tensor
	batchSize int
	policy    RemainderPolicy
	rng       *rand.Rand

	order  []int
	cursor int
}

// NewInMemory validates shapes and builds a dispatcher. A nil rng uses the
// global math/rand source for shuffling.
func NewInMemory(x, y *tensor.Tensor, batchSize int, policy RemainderPolicy, rng *rand.Rand) (*InMemory, error) {
	if len(x.Shape()) != 2 || len(y.Shape()) != 2 {
		return nil, fmt.Errorf("dispatcher requires 2-D X and Y, got %v and %v", x.Shape(), y.Shape())
	}
	if x.Shape()[0] != y.Shape()[0] {
		return nil, fmt.Errorf("X has %d rows but Y has %d", x.Shape()[0], y.Shape()[0])
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("mini-batch size must be > 0, got %d", batchSize)
	}
	n := x.Shape()[0]
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &InMemory{
		x:         x,
		y:         y,
		batchSize: batchSize,
		policy:    policy,
		rng:       rng,
		order:     order,
	}, nil
}

// NumExamples returns the total number of examples.
func (d *InMemory) NumExamples() int {
	return d.x.Shape()[0]
}

// Start rewinds the dispatcher to the first batch.
func (d *InMemory) Start() {
	d.cursor = 0
}

// Shuffle permutes the example order. It does not rewind.
func (d *InMemory) Shuffle() {
	swap := func(i, j int) { d.order[i], d.order[j] = d.order[j], d.order[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.order), swap)
	} else {
		rand.Shuffle(len(d.order), swap)
	}
}

// Done reports whether no further batch is available under the configured
// remainder policy.
func (d *InMemory) Done() bool {
	remaining := len(d.order) - d.cursor
	if d.policy == DiscardLast {
		return remaining < d.batchSize
	}
	return remaining == 0
}

// Next returns the next (X, Y) mini-batch, gathering rows in the current
// order. Calling Next once Done is true panics; the trainer never does.
func (d *InMemory) Next() (*tensor.Tensor, *tensor.Tensor) {
	if d.Done() {
		panic("data: Next called on exhausted dispatcher")
	}
	size := d.batchSize
	if remaining := len(d.order) - d.cursor; remaining < size {
		size = remaining
	}

	xf := d.x.Shape()[1]
	yf := d.y.Shape()[1]
	bx := tensor.Zeros(tensor.Shape{size, xf})
	by := tensor.Zeros(tensor.Shape{size, yf})

	for i := 0; i < size; i++ {
		row := d.order[d.cursor+i]
		copy(bx.Data()[i*xf:(i+1)*xf], d.x.Data()[row*xf:(row+1)*xf])
		copy(by.Data()[i*yf:(i+1)*yf], d.y.Data()[row*yf:(row+1)*yf])
	}
	d.cursor += size
	return bx, by
}
