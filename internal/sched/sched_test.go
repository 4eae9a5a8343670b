package sched

import "testing"

func TestNone(t *testing.T) {
	var s None
	if got := s.Update(0.1, 5); got != 0.1 {
		t.Errorf("None.Update: got %f, want 0.1", got)
	}
}

func TestStepDecay(t *testing.T) {
	s, err := NewStepDecay(0.5, 2)
	if err != nil {
		t.Fatalf("NewStepDecay: %v", err)
	}
	if got := s.Update(0.1, 1); got != 0.1 {
		t.Errorf("epoch 1: got %f, want 0.1", got)
	}
	if got := s.Update(0.1, 2); got != 0.05 {
		t.Errorf("epoch 2: got %f, want 0.05", got)
	}
	if got := s.Update(0.05, 4); got != 0.025 {
		t.Errorf("epoch 4: got %f, want 0.025", got)
	}
}

func TestStepDecay_Invalid(t *testing.T) {
	if _, err := NewStepDecay(0, 2); err == nil {
		t.Error("expected error for zero factor")
	}
	if _, err := NewStepDecay(0.5, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestPiecewise(t *testing.T) {
	s := Piecewise{Rates: map[int]float64{3: 0.01}}
	if got := s.Update(0.1, 1); got != 0.1 {
		t.Errorf("epoch 1: got %f, want 0.1", got)
	}
	if got := s.Update(0.1, 2); got != 0.01 {
		t.Errorf("epoch 2: got %f, want 0.01", got)
	}
}

// Update must have no hidden per-call state: the same inputs twice yield
// the same rate both times.
func TestUpdate_Idempotent(t *testing.T) {
	schedules := []Schedule{
		None{},
		StepDecay{Factor: 0.5, Period: 3},
		Piecewise{Rates: map[int]float64{2: 0.07}},
	}
	for _, s := range schedules {
		first := s.Update(0.3, 3)
		second := s.Update(0.3, 3)
		if first != second {
			t.Errorf("%T not idempotent: %f then %f", s, first, second)
		}
	}
}
