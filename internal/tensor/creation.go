package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return t
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.shape)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with elements drawn from a standard normal
// distribution using the given source. A nil rng falls back to the
// global math/rand source.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		if rng != nil {
			t.data[i] = rng.NormFloat64()
		} else {
			t.data[i] = rand.NormFloat64()
		}
	}
	return t
}
