package train

import (
	"log"
	"time"

	"github.com/guided-ml/guided/internal/nn"
)

// IterationSummary describes one primary optimization step. Guided-replay
// steps are never summarized.
type IterationSummary struct {
	Epoch     int
	Iteration int
	Loss      float64
	LearnRate float64
	Elapsed   time.Duration

	// Validation holds whatever the reporter's ComputeIteration hook
	// stores; the trainer never reads it.
	Validation float64
}

// RunSummary describes a whole Train call.
type RunSummary struct {
	RunID      string
	Epochs     int
	Iterations int
	FinalLoss  float64
	Elapsed    time.Duration
	Stopped    bool // true when the run ended on a cancellation request
}

// Reporter receives progress from the trainer. It is called only for
// primary updates: plain-mode steps and guided collecting-phase steps.
type Reporter interface {
	// Start is called once before the first iteration.
	Start()
	// ComputeIteration runs every ValidationFrequency iterations, before
	// ReportIteration, and may store derived metrics on the summary.
	ComputeIteration(s *IterationSummary, m nn.Model)
	// ReportIteration is called after every primary optimization step.
	ReportIteration(s *IterationSummary)
	// ReportEpoch is called at the end of every epoch.
	ReportEpoch(epoch, iteration int, m nn.Model)
	// Finish is called once, with the run summary and the final model.
	Finish(s *RunSummary, m nn.Model)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Start()                                       {}
func (NopReporter) ComputeIteration(*IterationSummary, nn.Model) {}
func (NopReporter) ReportIteration(*IterationSummary)            {}
func (NopReporter) ReportEpoch(epoch, iteration int, m nn.Model) {}
func (NopReporter) Finish(*RunSummary, nn.Model)                 {}

// ConsoleReporter logs progress with the standard library logger.
//
// Every controls iteration-line cadence (0 logs epochs only).
type ConsoleReporter struct {
	Every  int
	Logger *log.Logger
}

func (r *ConsoleReporter) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (r *ConsoleReporter) Start() {
	r.logf("training started")
}

func (r *ConsoleReporter) ComputeIteration(s *IterationSummary, m nn.Model) {}

func (r *ConsoleReporter) ReportIteration(s *IterationSummary) {
	if r.Every <= 0 || s.Iteration%r.Every != 0 {
		return
	}
	r.logf("epoch %d iter %d loss %.6f lr %.6g", s.Epoch, s.Iteration, s.Loss, s.LearnRate)
}

func (r *ConsoleReporter) ReportEpoch(epoch, iteration int, m nn.Model) {
	r.logf("epoch %d finished after %d iterations", epoch, iteration)
}

func (r *ConsoleReporter) Finish(s *RunSummary, m nn.Model) {
	r.logf("run %s finished: %d epochs, %d iterations, final loss %.6f in %s",
		s.RunID, s.Epochs, s.Iterations, s.FinalLoss, s.Elapsed.Round(time.Millisecond))
}
