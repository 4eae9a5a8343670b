package tensor

import "fmt"

// Tensor is a dense, row-major float64 tensor held in host memory.
//
// The training engine only ever touches whole parameter and gradient
// tensors as flat vectors; anything shape-aware (matmul, convolution,
// per-layer backprop) belongs to the model collaborator, not here.
//
// Example:
//
//	w, _ := tensor.FromSlice([]float64{0.5, -0.25}, tensor.Shape{2})
//	g := tensor.ZerosLike(w)
type Tensor struct {
	shape Shape
	data  []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape. The returned slice must not be mutated.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the tensor's backing slice.
// Mutating it mutates the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// At returns the element at the given flat index.
func (t *Tensor) At(i int) float64 {
	return t.data[i]
}

// Set writes the element at the given flat index.
func (t *Tensor) Set(i int, v float64) {
	t.data[i] = v
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	clone := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float64, len(t.data)),
	}
	copy(clone.data, t.data)
	return clone
}

// String renders the shape and up to the first few elements, for debugging.
func (t *Tensor) String() string {
	const preview = 8
	if len(t.data) <= preview {
		return fmt.Sprintf("Tensor%v%v", t.shape, t.data)
	}
	return fmt.Sprintf("Tensor%v%v...", t.shape, t.data[:preview])
}
