// Package sched provides learning-rate schedules for the training engine.
//
// A Schedule is a pure function of (current rate, epoch index): it is
// consulted once at the end of every epoch, keeps no counters of its own,
// and the same inputs always produce the same output.
package sched

import "fmt"

// Schedule maps the current learning rate and the just-finished epoch index
// (1-based) to the rate for the next epoch.
type Schedule interface {
	Update(rate float64, epoch int) float64
}

// None keeps the learning rate constant.
type None struct{}

// Update returns rate unchanged.
func (None) Update(rate float64, epoch int) float64 {
	return rate
}

// StepDecay multiplies the rate by Factor every Period epochs.
type StepDecay struct {
	Factor float64 // multiplier, typically in (0, 1)
	Period int     // epochs between drops
}

// NewStepDecay validates and builds a StepDecay schedule.
func NewStepDecay(factor float64, period int) (StepDecay, error) {
	if factor <= 0 {
		return StepDecay{}, fmt.Errorf("step decay factor must be > 0, got %g", factor)
	}
	if period <= 0 {
		return StepDecay{}, fmt.Errorf("step decay period must be > 0, got %d", period)
	}
	return StepDecay{Factor: factor, Period: period}, nil
}

// Update drops the rate at every Period-th epoch boundary.
func (s StepDecay) Update(rate float64, epoch int) float64 {
	if epoch%s.Period == 0 {
		return rate * s.Factor
	}
	return rate
}

// Piecewise looks the next rate up in a fixed epoch → rate table, keeping
// the current rate for epochs not in the table.
type Piecewise struct {
	Rates map[int]float64
}

// Update returns the table entry for epoch+1 if present, else rate.
func (p Piecewise) Update(rate float64, epoch int) float64 {
	if next, ok := p.Rates[epoch+1]; ok {
		return next
	}
	return rate
}
