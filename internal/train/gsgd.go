package train

import (
	"context"
	"sort"

	"github.com/guided-ml/guided/internal/tensor"
)

// batch is one captured (X, Y) mini-batch.
type batch struct {
	x, y *tensor.Tensor
}

// gsgdState is the guided mode's bookkeeping between iterations.
//
// buffer and psi are parallel, indexed by batch ordinal within the current
// collection window (ordinal k is stored at index k-1). Both are bounded
// by Rho and cleared — not reallocated — on every flush. prevError carries
// the last-observed verification loss across the whole run.
type gsgdState struct {
	verification []batch
	buffer       []batch
	psi          [][]float64
	prevError    float64
	loopCount    int
	reVisit      bool
}

func newGSGDState(rho int) *gsgdState {
	return &gsgdState{
		buffer: make([]batch, 0, rho),
		psi:    make([][]float64, 0, rho),
	}
}

// flush abandons the current collection window: buffers are cleared
// atomically and the ordinal counter restarts. Verification batches are
// kept; they are redrawn only at a true epoch start.
func (g *gsgdState) flush() {
	g.buffer = g.buffer[:0]
	g.psi = g.psi[:0]
	g.loopCount = 0
	g.reVisit = false
}

// runGuidedEpoch executes one epoch in guided mode and returns the last
// primary-update loss and whether a stop was requested.
//
// The epoch alternates two phases: a collecting phase that trains on new
// batches while accumulating per-batch consistency scores, and a
// guided-replay phase that fires whenever a full window of Rho batches has
// been collected. A window still partial when the epoch's data runs out is
// discarded without replay.
func (t *Trainer) runGuidedEpoch(ctx context.Context, d Dispatcher, rep Reporter, g *gsgdState, epoch int) (float64, bool) {
	// True epoch start: redraw the verification set and abandon any
	// window left over from the previous epoch.
	g.flush()
	g.verification = g.verification[:0]
	for i := 0; i < t.cfg.VerificationSetNum && !d.Done(); i++ {
		x, y := d.Next()
		g.verification = append(g.verification, batch{x, y})
	}

	var lastLoss float64
	for !d.Done() {
		if ctx.Err() != nil {
			return lastLoss, true
		}
		x, y := d.Next()

		// Primary update, reported exactly as in plain mode.
		g.buffer = append(g.buffer, batch{x, y})
		g.psi = append(g.psi, nil)
		g.loopCount++
		lastLoss = t.reportedStep(x, y, rep, epoch)

		if len(g.verification) == 0 {
			// The dispatcher ran dry during the verification draw; no
			// consistency signal can be computed, so only the primary
			// updates run this epoch.
			continue
		}

		verLoss := t.verificationLoss(g)
		sign := -1.0 // (-1)^pos with pos = 1
		if verLoss < g.prevError {
			sign = 1.0 // pos = 2: the update improved the held-out loss
		}

		if g.reVisit {
			lo, hi := revisitWindow(g.loopCount, t.cfg.RevisitBatchNum)
			for k := lo; k <= hi; k++ {
				revisitLoss := t.evalLoss(g.buffer[k-1].x, g.buffer[k-1].y)
				g.psi[k-1] = append(g.psi[k-1], sign*(g.prevError-revisitLoss))
			}
		}
		g.psi[g.loopCount-1] = append(g.psi[g.loopCount-1], g.prevError-verLoss)
		g.prevError = verLoss
		g.reVisit = true

		if g.loopCount%t.cfg.Rho == 0 {
			t.guidedReplay(g)
		}
	}
	return lastLoss, false
}

// verificationLoss evaluates one verification batch drawn uniformly at
// random, forward pass only.
func (t *Trainer) verificationLoss(g *gsgdState) float64 {
	vb := g.verification[t.rng.Intn(len(g.verification))]
	return t.evalLoss(vb.x, vb.y)
}

// revisitWindow returns the 1-based ordinal range [lo, hi] of previously
// collected batches to re-evaluate after training batch number loopCount.
// The window is the single preceding batch right after the first revisit
// becomes possible, and otherwise the revisitNum−1 batches immediately
// before the just-trained batch, clamped at the window start.
func revisitWindow(loopCount, revisitNum int) (lo, hi int) {
	if loopCount == 2 {
		return 1, 1
	}
	lo = loopCount - revisitNum + 1
	if lo < 1 {
		lo = 1
	}
	return lo, loopCount - 1
}

// guidedReplay is the periodic replay phase: batches are ranked by their
// mean consistency score and the most consistent ones retrained on. Replay
// updates are intentionally not reported and do not advance the iteration
// counter. The window is flushed afterwards regardless of how many batches
// were replayed.
func (t *Trainer) guidedReplay(g *gsgdState) {
	avg := make([]float64, g.loopCount)
	for k := 0; k < g.loopCount; k++ {
		avg[k] = mean(g.psi[k])
	}

	order := make([]int, g.loopCount)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return avg[order[a]] > avg[order[b]]
	})

	minRepeat := t.cfg.Rho / 2
	if g.loopCount < minRepeat {
		minRepeat = g.loopCount
	}

	for _, k := range order[:minRepeat] {
		if avg[k] <= 0 {
			// Not consistent on average; never replayed.
			continue
		}
		t.step(g.buffer[k].x, g.buffer[k].y)
		g.prevError = t.verificationLoss(g)
	}

	g.flush()
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
