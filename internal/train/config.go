package train

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/guided-ml/guided/internal/clip"
	"github.com/guided-ml/guided/internal/regularize"
	"github.com/guided-ml/guided/internal/solver"
)

// Shuffle policies for the training data between epochs.
const (
	ShuffleNever      = "never"
	ShuffleOnce       = "once"
	ShuffleEveryEpoch = "every-epoch"
)

// Config is the full set of recognized training options. It is created
// once, validated before training, and never mutated during a run.
//
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Solver selects the update rule: sgdm, adam or rmsprop.
	Solver string `yaml:"solver"`
	// Precision selects solver-state precision: double or single.
	Precision string `yaml:"precision"`

	InitialLearnRate float64 `yaml:"initial_learn_rate"`
	MaxEpochs        int     `yaml:"max_epochs"`
	MiniBatchSize    int     `yaml:"mini_batch_size"`

	// Momentum is the SGDM velocity decay, in [0, 1).
	Momentum float64 `yaml:"momentum"`
	// GradientDecayFactor and SquaredGradientDecayFactor are the Adam
	// β1/β2; SquaredGradientDecayFactor doubles as the RMSProp ρ.
	GradientDecayFactor        float64 `yaml:"gradient_decay_factor"`
	SquaredGradientDecayFactor float64 `yaml:"squared_gradient_decay_factor"`
	Epsilon                    float64 `yaml:"epsilon"`

	// Regularizer selects the penalty kind: none or l2.
	Regularizer      string  `yaml:"regularizer"`
	L2Regularization float64 `yaml:"l2_regularization"`

	GradientThresholdMethod string  `yaml:"gradient_threshold_method"`
	GradientThreshold       float64 `yaml:"gradient_threshold"`

	Shuffle string `yaml:"shuffle"`

	// ValidationFrequency is the iteration period at which the reporter's
	// ComputeIteration hook runs (0 disables it).
	ValidationFrequency int `yaml:"validation_frequency"`

	// Guided enables GSGD consistency tracking and replay. Rho,
	// RevisitBatchNum and VerificationSetNum are required when it is set.
	Guided             bool `yaml:"guided"`
	Rho                int  `yaml:"rho"`
	RevisitBatchNum    int  `yaml:"revisit_batch_num"`
	VerificationSetNum int  `yaml:"verification_set_num"`

	// ExecutionEnvironment is recognized for config compatibility; only
	// cpu (and its alias auto) is supported by this engine.
	ExecutionEnvironment string `yaml:"execution_environment"`

	// Seed fixes the engine's random source (shuffle order, verification
	// sampling). Zero seeds from the global source.
	Seed int64 `yaml:"seed"`

	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the baseline options: plain SGDM at rate 0.01.
func DefaultConfig() Config {
	return Config{
		Solver:                     "sgdm",
		Precision:                  "double",
		InitialLearnRate:           0.01,
		MaxEpochs:                  30,
		MiniBatchSize:              128,
		Momentum:                   0.9,
		GradientDecayFactor:        0.9,
		SquaredGradientDecayFactor: 0.999,
		Epsilon:                    1e-8,
		Regularizer:                "l2",
		L2Regularization:           1e-4,
		GradientThresholdMethod:    "none",
		Shuffle:                    ShuffleOnce,
		ExecutionEnvironment:       "cpu",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every recognized option. Violations are configuration
// errors: fatal before training starts, never recovered mid-run.
func (c Config) Validate() error {
	if _, err := solver.ParseKind(c.Solver); err != nil {
		return err
	}
	if _, err := parsePrecision(c.Precision); err != nil {
		return err
	}
	if _, err := parseRegularizer(c.Regularizer); err != nil {
		return err
	}
	if _, err := clip.ParseMethod(c.GradientThresholdMethod); err != nil {
		return err
	}
	if c.InitialLearnRate <= 0 {
		return fmt.Errorf("initial learn rate must be > 0, got %g", c.InitialLearnRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.L2Regularization < 0 {
		return fmt.Errorf("l2 regularization must be >= 0, got %g", c.L2Regularization)
	}
	if c.MaxEpochs <= 0 {
		return fmt.Errorf("max epochs must be > 0, got %d", c.MaxEpochs)
	}
	if c.MiniBatchSize <= 0 {
		return fmt.Errorf("mini-batch size must be > 0, got %d", c.MiniBatchSize)
	}
	if c.ValidationFrequency < 0 {
		return fmt.Errorf("validation frequency must be >= 0, got %d", c.ValidationFrequency)
	}
	switch c.Shuffle {
	case ShuffleNever, ShuffleOnce, ShuffleEveryEpoch:
	default:
		return fmt.Errorf("unsupported shuffle policy %q", c.Shuffle)
	}
	switch c.ExecutionEnvironment {
	case "", "cpu", "auto":
	default:
		return fmt.Errorf("unsupported execution environment %q", c.ExecutionEnvironment)
	}
	if c.Guided {
		if c.Rho <= 0 {
			return fmt.Errorf("guided mode requires rho > 0, got %d", c.Rho)
		}
		if c.RevisitBatchNum < 1 {
			return fmt.Errorf("guided mode requires revisit batch num >= 1, got %d", c.RevisitBatchNum)
		}
		if c.VerificationSetNum < 1 {
			return fmt.Errorf("guided mode requires verification set num >= 1, got %d", c.VerificationSetNum)
		}
	}
	return nil
}

func parsePrecision(s string) (solver.Precision, error) {
	switch s {
	case "", "double":
		return solver.Double, nil
	case "single":
		return solver.Single, nil
	default:
		return solver.Double, fmt.Errorf("unsupported precision %q", s)
	}
}

func parseRegularizer(s string) (regularize.Kind, error) {
	switch s {
	case "", "l2":
		return regularize.KindL2, nil
	case "none":
		return regularize.KindNone, nil
	default:
		return regularize.KindNone, fmt.Errorf("unsupported regularizer %q", s)
	}
}
