package tuneloop

import (
	"errors"
	"fmt"

	"github.com/thalesfsp/tuneloop/tunable"
)

var (
	// ErrUnsupportedVariant is returned when no tuner is registered under the
	// requested variant.
	ErrUnsupportedVariant = errors.New("unsupported tuner variant")

	// ErrVariantExists is returned when registering a variant twice.
	ErrVariantExists = errors.New("tuner variant already registered")

	// ErrInvalidSearchSpace is returned when the tunable description is
	// malformed.
	ErrInvalidSearchSpace = tunable.ErrInvalidSearchSpace

	// ErrEvaluation marks errors raised by the scoring function.
	ErrEvaluation = errors.New("evaluation failure")

	// ErrTuner marks errors raised by the tuner while constructing, proposing
	// or recording.
	ErrTuner = errors.New("tuner failure")

	// ErrInvalidIterations is returned for a negative iteration budget.
	ErrInvalidIterations = errors.New("iterations must not be negative")

	// ErrDebugLabelRequired is returned when debug capture is enabled without
	// a label naming the scoring function.
	ErrDebugLabelRequired = errors.New("debug label is required when a debug base path is set")
)

// IterationError reports the failure of a single iteration. It unwraps to
// both its Kind (ErrEvaluation or ErrTuner) and the originating error:
//
//	var iterErr *IterationError
//	if errors.As(err, &iterErr) {
//	    log.Printf("failed at iteration %d", iterErr.Iteration)
//	}
//
//	errors.Is(err, ErrEvaluation) // true for scoring function failures
type IterationError struct {
	// Iteration is the 1-indexed iteration that failed.
	Iteration int

	// Op is the step that failed: propose, evaluate or record.
	Op string

	// Kind is ErrEvaluation or ErrTuner.
	Kind error

	// Err is the originating error.
	Err error
}

// Error implements error.
func (e *IterationError) Error() string {
	return fmt.Sprintf("%v at iteration %d (%s): %v", e.Kind, e.Iteration, e.Op, e.Err)
}

// Unwrap implements the multi-error unwrapping of errors.Is and errors.As.
func (e *IterationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
