// Package clip implements gradient thresholding (clipping). Thresholding
// is stateless and deterministic: it is applied once per iteration to the
// full gradient set, after regularization and before the solver.
package clip

import (
	"fmt"
	"math"

	"github.com/guided-ml/guided/internal/tensor"
)

// Method selects a thresholding strategy.
type Method int

// Supported threshold methods.
const (
	// None passes gradients through unchanged.
	None Method = iota
	// GlobalL2Norm rescales the whole gradient set when its combined L2
	// norm exceeds the limit.
	GlobalL2Norm
	// L2Norm rescales each parameter's gradient independently.
	L2Norm
	// AbsoluteValue clamps every element to [-limit, limit].
	AbsoluteValue
)

// String returns the config-surface name of the method.
func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case GlobalL2Norm:
		return "global-l2norm"
	case L2Norm:
		return "l2norm"
	case AbsoluteValue:
		return "absolute-value"
	default:
		return "unknown"
	}
}

// ParseMethod maps a config string to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "none":
		return None, nil
	case "global-l2norm":
		return GlobalL2Norm, nil
	case "l2norm":
		return L2Norm, nil
	case "absolute-value":
		return AbsoluteValue, nil
	default:
		return None, fmt.Errorf("unsupported gradient threshold method %q", s)
	}
}

// Threshold clips grads in place according to method and limit. Nil
// entries are skipped. An unrecognized method is a configuration error.
func Threshold(grads []*tensor.Tensor, method Method, limit float64) error {
	switch method {
	case None:
		return nil
	case GlobalL2Norm:
		clipGlobalNorm(grads, limit)
		return nil
	case L2Norm:
		for _, g := range grads {
			if g == nil {
				continue
			}
			clipNorm(g, limit)
		}
		return nil
	case AbsoluteValue:
		for _, g := range grads {
			if g == nil {
				continue
			}
			g.Clamp(limit)
		}
		return nil
	default:
		return fmt.Errorf("unsupported gradient threshold method %d", method)
	}
}

// clipGlobalNorm rescales every gradient by limit/norm when the combined
// L2 norm of the whole set exceeds limit.
func clipGlobalNorm(grads []*tensor.Tensor, limit float64) {
	sumSq := 0.0
	for _, g := range grads {
		if g == nil {
			continue
		}
		sumSq += g.SumSquares()
	}
	norm := math.Sqrt(sumSq)
	if norm <= limit || norm == 0 {
		return
	}
	scale := limit / norm
	for _, g := range grads {
		if g == nil {
			continue
		}
		g.Scale(scale)
	}
}

func clipNorm(g *tensor.Tensor, limit float64) {
	norm := g.Norm()
	if norm <= limit || norm == 0 {
		return
	}
	g.Scale(limit / norm)
}
