package tuners

import "github.com/thalesfsp/tuneloop/tunable"

// UniformTuner proposes uniformly random, not yet recorded, proposals. It is
// the baseline every model based tuner should beat.
type UniformTuner struct {
	*base
}

// NewUniformTuner returns a UniformTuner bound to space.
func NewUniformTuner(space *tunable.Tunable, opts Options) (*UniformTuner, error) {
	b, err := newBase("uniform", space, opts)
	if err != nil {
		return nil, err
	}

	return &UniformTuner{base: b}, nil
}

// Propose returns a random proposal.
func (u *UniformTuner) Propose() (tunable.Proposal, error) {
	candidates, err := u.candidates(1)
	if err != nil {
		return nil, err
	}

	u.trace(TraceEvent{
		Event:      "propose",
		Trial:      u.Trials() + 1,
		Phase:      "random",
		Candidates: len(candidates),
		Proposal:   candidates[0],
	})

	return candidates[0], nil
}
