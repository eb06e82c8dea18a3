package tuneloop

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/thalesfsp/tuneloop/tunable"
	"github.com/thalesfsp/tuneloop/tuners"
)

// ScoringFunc is the black-box objective being optimized. Higher scores are
// better.
//
// Parameters:
//   - ctx: Passed through untouched by the driver. Scoring functions may use
//     it to enforce their own deadlines.
//   - params: Exactly the named hyperparameters of the current proposal.
//
// Returns:
// - float64: The score of this proposal
// - error: Any error aborts the run at the current iteration
//
// Usage example:
//
//	scoring := ScoringFunc(func(ctx context.Context, params tunable.Proposal) (float64, error) {
//	    depth := params["max_depth"].(int64)
//	    accuracy, err := trainAndValidate(ctx, depth)
//	    if err != nil {
//	        return 0, fmt.Errorf("training failed: %w", err)
//	    }
//
//	    return accuracy, nil
//	})
type ScoringFunc func(ctx context.Context, params tunable.Proposal) (float64, error)

// Tuner is a stateful search strategy. The driver only ever talks to this
// interface, never to a concrete variant.
//
// Propose returns the next proposal to evaluate. It may fail, for example
// with tuners.ErrExhaustedSearchSpace once a finite space has been covered.
// Record hands the evaluated (proposal, score) pair back so the tuner can
// update its model.
type Tuner interface {
	Propose() (tunable.Proposal, error)
	Record(proposal tunable.Proposal, score float64) error
}

// TunerOptions are the construction parameters handed to a TunerFactory. The
// debug path, when enabled, is set here before the tuner exists.
type TunerOptions = tuners.Options

// TunerFactory constructs a Tuner bound to a Tunable space.
type TunerFactory func(space *tunable.Tunable, opts TunerOptions) (Tuner, error)

// TuningFunc is a Run pre-bound to a variant.
type TuningFunc func(
	ctx context.Context,
	config Config,
	scoringFunc ScoringFunc,
	description map[string]any,
	iterations int,
) (float64, error)

// ProgressUpdate represents the state of a run after one complete
// propose/evaluate/record cycle.
type ProgressUpdate struct {
	// RunID identifies the run the update belongs to
	RunID string

	// Variant is the tuner variant driving the run
	Variant Variant

	// Iteration is the 1-indexed iteration that just completed
	Iteration int

	// TotalIterations is the iteration budget of the run
	TotalIterations int

	// Proposal holds the hyperparameters evaluated at this iteration
	Proposal tunable.Proposal

	// Score is the score of Proposal
	Score float64

	// BestScore is the best score observed so far
	BestScore float64
}

// Config holds the optional settings of a run.
//
// Usage example:
//
//	config := DefaultConfig()
//	config.DebugBasePath = "/tmp/tuning-debug"
//	config.DebugLabel = "random_forest_iris"
//	config.Tuner.Seed = 42
//
// Note:
// - Create separate configs for concurrent runs.
type Config struct {
	// DebugBasePath enables debug capture when non-empty. The tuner receives
	// <DebugBasePath>/<DebugLabel> as its debug path.
	DebugBasePath string

	// DebugLabel names the scoring function. Required when DebugBasePath is
	// set.
	DebugLabel string

	// Tuner is passed to the variant factory. When DebugBasePath is set, its
	// DebugPath is replaced by <DebugBasePath>/<DebugLabel>. Otherwise it is
	// passed through as given.
	Tuner TunerOptions

	// ProgressChan receives an update after every iteration. Updates are
	// dropped when the channel is full. If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate

	// Logger is the base logger of the run. Defaults to the package logger.
	Logger *logrus.Entry
}
