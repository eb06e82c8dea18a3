package tuners

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thalesfsp/tuneloop/tunable"
)

//////
// Const, vars, types.
//////

// maxEnumeration bounds the size of finite spaces the tuners list exhaustively
// when random sampling cannot find an untried proposal.
const maxEnumeration = 100000

var (
	// ErrExhaustedSearchSpace is returned by Propose when every proposal of a
	// finite space has already been recorded and duplicates are not allowed.
	ErrExhaustedSearchSpace = errors.New("search space exhausted")

	// ErrInvalidScore is returned by Record for NaN scores.
	ErrInvalidScore = errors.New("score is not a number")
)

// Options holds the construction parameters shared by every tuner.
type Options struct {
	// DebugPath is a directory the tuner may write diagnostic traces into.
	// Empty disables tracing. The directory must already exist.
	DebugPath string

	// Seed seeds the tuner random source. Zero seeds from the clock.
	Seed int64

	// NumCandidates determines how many random candidates model based tuners
	// score with their acquisition function before each proposal.
	// Recommended range: 100-5000
	NumCandidates int

	// MinTrials is the number of recorded trials before model based tuners
	// start using their model. Earlier proposals are uniformly random.
	MinTrials int

	// AllowDuplicates lets tuners propose already recorded proposals. When
	// false, a finite space eventually fails with ErrExhaustedSearchSpace.
	AllowDuplicates bool

	// Logger receives debug logs. Defaults to a logrus entry tagged with the
	// tuner component.
	Logger *logrus.Entry
}

// base holds the trial history and candidate generation shared by all
// tuners. It is not safe for concurrent use: proposals depend on every prior
// record, so a tuner is driven by a single loop.
type base struct {
	name   string
	space  *tunable.Tunable
	opts   Options
	rng    *rand.Rand
	logger *logrus.Entry
	tracer *tracer

	// trials and scores are the recorded history, trials in the unit hypercube
	trials [][]float64
	scores []float64

	// tried holds the keys of recorded proposals
	tried map[string]struct{}
}

//////
// Exported functionalities.
//////

// DefaultOptions returns the default tuner options.
func DefaultOptions() Options {
	return Options{
		NumCandidates: 1000,
		MinTrials:     5,
	}
}

//////
// Factory.
//////

func newBase(name string, space *tunable.Tunable, opts Options) (*base, error) {
	if space == nil {
		return nil, errors.New("tunable space is required")
	}

	defaults := DefaultOptions()

	if opts.NumCandidates <= 0 {
		opts.NumCandidates = defaults.NumCandidates
	}

	if opts.MinTrials <= 0 {
		opts.MinTrials = defaults.MinTrials
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithFields(logrus.Fields{
			"app":       "tuneloop",
			"component": "tuner",
		})
	}

	return &base{
		name:   name,
		space:  space,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.WithField("tuner", name),
		tracer: newTracer(opts.DebugPath),
		tried:  make(map[string]struct{}),
	}, nil
}

//////
// Methods.
//////

// Trials returns the number of recorded trials.
func (b *base) Trials() int {
	return len(b.scores)
}

// Record adds a (proposal, score) observation to the history.
func (b *base) Record(proposal tunable.Proposal, score float64) error {
	if math.IsNaN(score) {
		return ErrInvalidScore
	}

	x, err := b.space.Transform(proposal)
	if err != nil {
		return fmt.Errorf("recording proposal: %w", err)
	}

	b.trials = append(b.trials, x)
	b.scores = append(b.scores, score)
	b.tried[b.space.Key(proposal)] = struct{}{}

	b.trace(TraceEvent{
		Event:    "record",
		Trial:    len(b.scores),
		Proposal: proposal,
		Score:    finite(score),
	})

	return nil
}

// candidates returns up to n distinct proposals, excluding recorded ones
// unless duplicates are allowed. At least one proposal is returned on
// success.
func (b *base) candidates(n int) ([]tunable.Proposal, error) {
	if b.opts.AllowDuplicates {
		return b.space.Sample(b.rng, n), nil
	}

	finiteSpace := b.space.Finite()
	if finiteSpace && float64(len(b.tried)) >= b.space.Cardinality() {
		return nil, ErrExhaustedSearchSpace
	}

	out := make([]tunable.Proposal, 0, n)
	seen := make(map[string]struct{}, n)

	untried := math.Inf(1)
	if finiteSpace {
		untried = b.space.Cardinality() - float64(len(b.tried))
	}

	for attempts := 0; attempts < 10*n && len(out) < n && float64(len(out)) < untried; attempts++ {
		p := b.space.Sample(b.rng, 1)[0]
		key := b.space.Key(p)

		if _, dup := b.tried[key]; dup {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, p)
	}

	if len(out) > 0 {
		return out, nil
	}

	if !finiteSpace {
		return nil, ErrExhaustedSearchSpace
	}

	all, err := b.space.Enumerate(maxEnumeration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExhaustedSearchSpace, err)
	}

	b.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	for _, p := range all {
		if _, dup := b.tried[b.space.Key(p)]; dup {
			continue
		}

		out = append(out, p)
		if len(out) == n {
			break
		}
	}

	if len(out) == 0 {
		return nil, ErrExhaustedSearchSpace
	}

	return out, nil
}

func (b *base) trace(event TraceEvent) {
	event.Tuner = b.name

	if err := b.tracer.write(event); err != nil {
		b.logger.WithError(err).Warn("Failed to write debug trace.")
	}
}
