package tuneloop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thalesfsp/tuneloop/tunable"
	"github.com/thalesfsp/tuneloop/tuners"
)

var logger = logrus.WithFields(logrus.Fields{
	"app":       "tuneloop",
	"component": "driver",
})

//////
// Exported functionalities.
//////

// DefaultConfig returns a default configuration: debug capture disabled, no
// progress updates, default tuner options.
func DefaultConfig() Config {
	return Config{
		Tuner:        tuners.DefaultOptions(),
		ProgressChan: nil, // Default to no progress updates.
	}
}

// Run drives a tuner of the given variant against scoringFunc for exactly
// iterations evaluations and returns the best score observed.
//
// Parameters:
// - ctx: Passed to every scoringFunc call
// - config: Optional settings, see DefaultConfig
// - variant: The registered tuner variant to use
// - scoringFunc: The objective to maximise
// - description: The hyperparameter space, see tunable.FromDict
// - iterations: Number of evaluations, zero returns -Inf
//
// Returns:
// - float64: The best score, -Inf when iterations is zero
// - error: ErrUnsupportedVariant, ErrInvalidSearchSpace, ErrTuner or an
//   *IterationError (wrapping ErrEvaluation or ErrTuner)
//
// Usage example:
//
//	description := map[string]any{
//	    "max_depth": map[string]any{"type": "int", "range": []any{1, 10}},
//	}
//
//	best, err := Run(ctx, DefaultConfig(), VariantGPEi, scoring, description, 50)
//
// How it works:
// 1. Resolves the variant and builds the Tunable space
// 2. Creates the debug directory, if enabled, before the tuner exists
// 3. Constructs exactly one tuner bound to the space
// 4. For each iteration, strictly sequentially:
//   - Asks the tuner for a proposal
//   - Evaluates the proposal with scoringFunc
//   - Records the (proposal, score) pair in the tuner
//   - Updates the best score
//
// Important notes:
// - No early stopping and no retries: any error aborts the run
// - A failed run never returns a best score
// - Safe to call concurrently, each call owns its tuner.
func Run(
	ctx context.Context,
	config Config,
	variant Variant,
	scoringFunc ScoringFunc,
	description map[string]any,
	iterations int,
) (float64, error) {
	factory, err := LookupVariant(variant)
	if err != nil {
		return 0, err
	}

	space, err := tunable.FromDict(description)
	if err != nil {
		return 0, err
	}

	return run(ctx, config, variant, factory, scoringFunc, space, iterations)
}

// RunTunable is Run over an already built Tunable space.
func RunTunable(
	ctx context.Context,
	config Config,
	variant Variant,
	scoringFunc ScoringFunc,
	space *tunable.Tunable,
	iterations int,
) (float64, error) {
	factory, err := LookupVariant(variant)
	if err != nil {
		return 0, err
	}

	if space == nil {
		return 0, fmt.Errorf("%w: nil tunable space", ErrInvalidSearchSpace)
	}

	return run(ctx, config, variant, factory, scoringFunc, space, iterations)
}

// MakeTuningFunction returns a TuningFunc bound to variant.
func MakeTuningFunction(variant Variant) TuningFunc {
	return func(
		ctx context.Context,
		config Config,
		scoringFunc ScoringFunc,
		description map[string]any,
		iterations int,
	) (float64, error) {
		return Run(ctx, config, variant, scoringFunc, description, iterations)
	}
}

// Tuning functions bound to each built-in variant.
var (
	GPTuning      = MakeTuningFunction(VariantGP)
	GPEiTuning    = MakeTuningFunction(VariantGPEi)
	GCPTuning     = MakeTuningFunction(VariantGCP)
	GCPEiTuning   = MakeTuningFunction(VariantGCPEi)
	UniformTuning = MakeTuningFunction(VariantUniform)
)

//////
// Helper functions.
//////

func run(
	ctx context.Context,
	config Config,
	variant Variant,
	factory TunerFactory,
	scoringFunc ScoringFunc,
	space *tunable.Tunable,
	iterations int,
) (float64, error) {
	if iterations < 0 {
		return 0, failRun(variant, fmt.Errorf("%w: %d", ErrInvalidIterations, iterations))
	}

	if scoringFunc == nil {
		return 0, failRun(variant, errors.New("scoring function is required"))
	}

	runID := uuid.NewString()

	log := config.Logger
	if log == nil {
		log = logger
	}

	log = log.WithFields(logrus.Fields{
		"run_id":  runID,
		"variant": variant,
	})

	opts := config.Tuner

	if opts.Logger == nil {
		opts.Logger = log
	}

	// Debug capture is set up once, before the tuner exists.
	if config.DebugBasePath != "" {
		path, err := prepareDebugPath(config.DebugBasePath, config.DebugLabel)
		if err != nil {
			return 0, failRun(variant, err)
		}

		opts.DebugPath = path

		log.WithField("debug_path", path).Info("Debug capture enabled.")
	}

	tuner, err := factory(space, opts)
	if err != nil {
		return 0, failRun(variant, fmt.Errorf("%w: constructing %s tuner: %w", ErrTuner, variant, err))
	}

	log.WithFields(logrus.Fields{
		"iterations":      iterations,
		"hyperparameters": space.Names(),
	}).Debug("Starting tuning run.")

	bestScore := math.Inf(-1)

	// fail wraps err with the iteration context and records it.
	fail := func(iteration int, op string, kind, err error) error {
		runsTotal.WithLabelValues(string(variant), "failed").Inc()
		evaluationFailures.WithLabelValues(string(variant), op).Inc()

		iterErr := &IterationError{Iteration: iteration, Op: op, Kind: kind, Err: err}
		log.WithError(err).WithField("iteration", iteration).Error("Tuning run failed.")

		return iterErr
	}

	for i := 1; i <= iterations; i++ {
		proposal, err := tuner.Propose()
		if err != nil {
			return 0, fail(i, "propose", ErrTuner, err)
		}

		start := time.Now()
		score, err := scoringFunc(ctx, proposal)
		evaluationDuration.WithLabelValues(string(variant)).Observe(time.Since(start).Seconds())

		if err != nil {
			return 0, fail(i, "evaluate", ErrEvaluation, err)
		}

		evaluationsTotal.WithLabelValues(string(variant)).Inc()

		if err := tuner.Record(proposal, score); err != nil {
			return 0, fail(i, "record", ErrTuner, err)
		}

		if score > bestScore {
			bestScore = score
		}

		log.WithFields(logrus.Fields{
			"iteration": i,
			"score":     score,
			"best":      bestScore,
		}).Debug("Iteration completed.")

		sendProgress(config.ProgressChan, ProgressUpdate{
			RunID:           runID,
			Variant:         variant,
			Iteration:       i,
			TotalIterations: iterations,
			Proposal:        proposal,
			Score:           score,
			BestScore:       bestScore,
		})
	}

	runsTotal.WithLabelValues(string(variant), "succeeded").Inc()

	log.WithField("best_score", bestScore).Info("Tuning run completed.")

	return bestScore, nil
}

// failRun counts a run that failed before its first iteration.
func failRun(variant Variant, err error) error {
	runsTotal.WithLabelValues(string(variant), "failed").Inc()

	return err
}

// sendProgress delivers update without blocking the loop.
func sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}

	select {
	case ch <- update:
	default:
		// Skip update if channel is full.
	}
}
