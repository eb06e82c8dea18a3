package tunable

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//////
// Const, vars, types.
//////

var (
	// ErrInvalidSearchSpace is returned when a search space description is
	// malformed.
	ErrInvalidSearchSpace = errors.New("invalid search space")

	// ErrInvalidProposal is returned when a proposal does not fit the space.
	ErrInvalidProposal = errors.New("invalid proposal")
)

// Proposal maps hyperparameter names to concrete values drawn from their
// domains.
type Proposal map[string]any

// Tunable is an immutable collection of named hyperparameters. Names are kept
// sorted so vectors produced by Transform have a stable layout.
type Tunable struct {
	hyperparameters map[string]Hyperparameter
	names           []string
}

//////
// Factory.
//////

// New returns a Tunable over the given hyperparameters. At least one
// hyperparameter is required.
func New(hyperparameters map[string]Hyperparameter) (*Tunable, error) {
	if len(hyperparameters) == 0 {
		return nil, errors.Wrap(ErrInvalidSearchSpace, "no hyperparameters")
	}

	t := &Tunable{
		hyperparameters: make(map[string]Hyperparameter, len(hyperparameters)),
		names:           make([]string, 0, len(hyperparameters)),
	}

	for name, hp := range hyperparameters {
		if name == "" {
			return nil, errors.Wrap(ErrInvalidSearchSpace, "empty hyperparameter name")
		}

		if hp == nil {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "hyperparameter %q is nil", name)
		}

		t.hyperparameters[name] = hp
		t.names = append(t.names, name)
	}

	sort.Strings(t.names)

	return t, nil
}

//////
// Methods.
//////

// Names returns the sorted hyperparameter names.
func (t *Tunable) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// Get returns the named hyperparameter.
func (t *Tunable) Get(name string) (Hyperparameter, bool) {
	hp, ok := t.hyperparameters[name]

	return hp, ok
}

// Dimensions returns the length of vectors produced by Transform.
func (t *Tunable) Dimensions() int {
	return len(t.names)
}

// Cardinality returns the number of distinct proposals, +Inf when any
// hyperparameter is continuous.
func (t *Tunable) Cardinality() float64 {
	c := 1.0
	for _, name := range t.names {
		c *= t.hyperparameters[name].Cardinality()
	}

	return c
}

// Finite reports whether every hyperparameter has a finite domain.
func (t *Tunable) Finite() bool {
	return !math.IsInf(t.Cardinality(), 1)
}

// Sample draws n random proposals.
func (t *Tunable) Sample(rng *rand.Rand, n int) []Proposal {
	proposals := make([]Proposal, n)

	for i := range proposals {
		p := make(Proposal, len(t.names))
		for _, name := range t.names {
			p[name] = t.hyperparameters[name].Sample(rng)
		}

		proposals[i] = p
	}

	return proposals
}

// Transform maps a proposal into the unit hypercube. The proposal must name
// exactly the hyperparameters of the space.
func (t *Tunable) Transform(p Proposal) ([]float64, error) {
	if len(p) != len(t.names) {
		return nil, errors.Wrapf(ErrInvalidProposal, "expected %d hyperparameters, got %d", len(t.names), len(p))
	}

	x := make([]float64, len(t.names))

	for i, name := range t.names {
		v, ok := p[name]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidProposal, "missing hyperparameter %q", name)
		}

		xi, err := t.hyperparameters[name].Transform(v)
		if err != nil {
			return nil, errors.Wrapf(err, "hyperparameter %q", name)
		}

		x[i] = xi
	}

	return x, nil
}

// InverseTransform maps a point of the unit hypercube back to a proposal.
func (t *Tunable) InverseTransform(x []float64) (Proposal, error) {
	if len(x) != len(t.names) {
		return nil, errors.Wrapf(ErrInvalidProposal, "expected vector of length %d, got %d", len(t.names), len(x))
	}

	p := make(Proposal, len(t.names))
	for i, name := range t.names {
		p[name] = t.hyperparameters[name].InverseTransform(x[i])
	}

	return p, nil
}

// Defaults returns the proposal made of every hyperparameter default.
func (t *Tunable) Defaults() Proposal {
	p := make(Proposal, len(t.names))
	for _, name := range t.names {
		p[name] = t.hyperparameters[name].Default()
	}

	return p
}

// Enumerate lists every proposal of a finite space, in lexicographic order of
// the sorted names. Spaces larger than limit are rejected.
func (t *Tunable) Enumerate(limit int) ([]Proposal, error) {
	c := t.Cardinality()
	if math.IsInf(c, 1) {
		return nil, errors.New("cannot enumerate a continuous search space")
	}

	if c > float64(limit) {
		return nil, errors.Errorf("search space has %v proposals, more than the limit of %d", c, limit)
	}

	proposals := []Proposal{{}}

	for _, name := range t.names {
		values := t.hyperparameters[name].Values()
		next := make([]Proposal, 0, len(proposals)*len(values))

		for _, p := range proposals {
			for _, v := range values {
				q := make(Proposal, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}

				q[name] = v
				next = append(next, q)
			}
		}

		proposals = next
	}

	return proposals, nil
}

// Key returns a canonical identity for a proposal, used to detect duplicates.
// Numeric values compare by value regardless of their Go type.
func (t *Tunable) Key(p Proposal) string {
	var b strings.Builder

	for _, name := range t.names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(formatValue(p[name]))
		b.WriteByte(';')
	}

	return b.String()
}
