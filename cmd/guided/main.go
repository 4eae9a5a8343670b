// Package main provides the Guided ML training engine CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/guided-ml/guided/nn"
	"github.com/guided-ml/guided/tensor"
	"github.com/guided-ml/guided/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Guided ML Training Engine %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Guided ML - mini-batch training with guided batch replay")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version           Show version")
	fmt.Println("  train [flags]     Train the reference model on synthetic data")
	fmt.Println("")
	fmt.Println("Train flags:")
	fmt.Println("  -config PATH      YAML training options (optional)")
	fmt.Println("  -samples N        synthetic sample count (default 1024)")
	fmt.Println("  -log-every N      iteration logging cadence (default 50)")
}

// runTrain trains the reference Dense model on a synthetic linear problem,
// mostly as a smoke test of a config file and a quick plain-vs-guided
// comparison surface.
func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML training options")
	samples := fs.Int("samples", 1024, "synthetic sample count")
	logEvery := fs.Int("log-every", 50, "iteration logging cadence")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := train.DefaultConfig()
	if *configPath != "" {
		loaded, err := train.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(1))
	}

	x, y, err := syntheticLinear(*samples, rng)
	if err != nil {
		return err
	}
	dispatcher, err := train.NewInMemoryDispatcher(x, y, cfg.MiniBatchSize, train.TruncateLast, rng)
	if err != nil {
		return err
	}

	model := nn.NewDense(x.Shape()[1], y.Shape()[1], rng)
	trainer, err := train.New(model, cfg, nil)
	if err != nil {
		return err
	}

	mode := "plain"
	if cfg.Guided {
		mode = "guided"
	}
	log.Printf("training %s: solver=%s lr=%g epochs=%d batch=%d",
		mode, cfg.Solver, cfg.InitialLearnRate, cfg.MaxEpochs, cfg.MiniBatchSize)

	// Ctrl-C requests a cooperative stop at the next iteration boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trained, err := trainer.Train(ctx, dispatcher, &train.ConsoleReporter{Every: *logEvery})
	if err != nil {
		log.Printf("training stopped early: %v", err)
	}

	for _, p := range trained.Parameters() {
		log.Printf("%s = %v", p.Name(), p.Value())
	}
	return nil
}

// syntheticLinear builds noisy samples of y = 3*x0 - 2*x1 + 0.5.
func syntheticLinear(n int, rng *rand.Rand) (*tensor.Tensor, *tensor.Tensor, error) {
	xs := make([]float64, n*2)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()*2 - 1
		x1 := rng.Float64()*2 - 1
		xs[i*2] = x0
		xs[i*2+1] = x1
		ys[i] = 3*x0 - 2*x1 + 0.5 + rng.NormFloat64()*0.05
	}
	x, err := tensor.FromSlice(xs, tensor.Shape{n, 2})
	if err != nil {
		return nil, nil, err
	}
	y, err := tensor.FromSlice(ys, tensor.Shape{n, 1})
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
