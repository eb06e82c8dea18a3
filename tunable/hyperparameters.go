package tunable

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

//////
// Const, vars, types.
//////

// Kind identifies the type of values a hyperparameter produces.
type Kind string

const (
	// KindInt is an inclusive integer range. Values are int64.
	KindInt Kind = "int"

	// KindFloat is a closed float range. Values are float64.
	KindFloat Kind = "float"

	// KindBool is a boolean flag.
	KindBool Kind = "bool"

	// KindCategorical is a finite set of scalar values.
	KindCategorical Kind = "categorical"
)

// Hyperparameter describes the domain of a single named hyperparameter.
//
// Every hyperparameter maps onto a single dimension of the unit interval so
// tuners can model the whole space as a unit hypercube:
//   - Transform maps a concrete value into [0, 1]
//   - InverseTransform maps any point of [0, 1] back to a concrete value
//
// Cardinality is the number of distinct values, +Inf for continuous domains.
// Values enumerates finite domains and returns nil for continuous ones.
type Hyperparameter interface {
	Kind() Kind
	Sample(rng *rand.Rand) any
	Transform(value any) (float64, error)
	InverseTransform(x float64) any
	Cardinality() float64
	Values() []any
	Default() any
}

// Numeric is an int or float hyperparameter bounded by Min and Max, both
// inclusive.
//
// Type Parameter:
//   - T: The numeric type of the range (int64 or float64)
//
// Usage:
//
//	depth, err := NewInt(1, 10)
//	rate, err := NewFloat(0.0001, 0.1)
type Numeric[T constraints.Integer | constraints.Float] struct {
	// Min defines the minimum allowed value (inclusive).
	Min T

	// Max defines the maximum allowed value (inclusive).
	Max T

	def T
}

// Bool is a boolean hyperparameter.
type Bool struct {
	def bool
}

// Categorical is a hyperparameter over a finite list of comparable scalars.
// The list order defines the position of each value in the unit interval.
type Categorical struct {
	choices []any
	def     any
}

//////
// Numeric.
//////

// NewInt returns an integer hyperparameter over [minimum, maximum]. The
// default value is the minimum.
func NewInt(minimum, maximum int64) (*Numeric[int64], error) {
	// Sampling draws from maximum-minimum+1 values, which must fit in int64.
	if minimum <= maximum && (minimum < 0 && maximum > math.MaxInt64+minimum || maximum-minimum == math.MaxInt64) {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "int range [%d, %d] is too wide", minimum, maximum)
	}

	return newNumeric(minimum, maximum)
}

// NewFloat returns a float hyperparameter over [minimum, maximum]. The default
// value is the minimum.
func NewFloat(minimum, maximum float64) (*Numeric[float64], error) {
	if math.IsNaN(minimum) || math.IsNaN(maximum) || math.IsInf(minimum, 0) || math.IsInf(maximum, 0) {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "float range [%v, %v] must be finite", minimum, maximum)
	}

	return newNumeric(minimum, maximum)
}

func newNumeric[T constraints.Integer | constraints.Float](minimum, maximum T) (*Numeric[T], error) {
	if minimum > maximum {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "range min %v is greater than max %v", minimum, maximum)
	}

	return &Numeric[T]{Min: minimum, Max: maximum, def: minimum}, nil
}

// WithDefault sets the default value, which must be inside the range.
func (n *Numeric[T]) WithDefault(value T) (*Numeric[T], error) {
	if value < n.Min || value > n.Max {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "default %v outside of range [%v, %v]", value, n.Min, n.Max)
	}

	n.def = value

	return n, nil
}

// Kind implements Hyperparameter.
func (n *Numeric[T]) Kind() Kind {
	if n.integer() {
		return KindInt
	}

	return KindFloat
}

// Sample draws a uniform value from the range.
func (n *Numeric[T]) Sample(rng *rand.Rand) any {
	if n.integer() {
		// For integer types, generate random integer in range.
		lo := int64(n.Min)
		hi := int64(n.Max)

		return T(lo + rng.Int63n(hi-lo+1))
	}

	lo := float64(n.Min)
	hi := float64(n.Max)

	return T(lo + rng.Float64()*(hi-lo))
}

// Transform implements Hyperparameter.
func (n *Numeric[T]) Transform(value any) (float64, error) {
	v, ok := toFloat64(value)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidProposal, "value %v (%T) is not numeric", value, value)
	}

	if n.integer() && v != math.Trunc(v) {
		return 0, errors.Wrapf(ErrInvalidProposal, "value %v is not an integer", value)
	}

	lo, hi := float64(n.Min), float64(n.Max)
	if v < lo || v > hi {
		return 0, errors.Wrapf(ErrInvalidProposal, "value %v outside of range [%v, %v]", value, n.Min, n.Max)
	}

	if hi == lo {
		return 0, nil
	}

	return (v - lo) / (hi - lo), nil
}

// InverseTransform implements Hyperparameter. Points outside of [0, 1] are
// clamped to the range bounds.
func (n *Numeric[T]) InverseTransform(x float64) any {
	x = clampUnit(x)

	lo, hi := float64(n.Min), float64(n.Max)
	v := lo + x*(hi-lo)

	if n.integer() {
		v = math.Round(v)
	}

	return T(math.Min(math.Max(v, lo), hi))
}

// Cardinality implements Hyperparameter.
func (n *Numeric[T]) Cardinality() float64 {
	if n.integer() {
		return float64(n.Max) - float64(n.Min) + 1
	}

	if n.Min == n.Max {
		return 1
	}

	return math.Inf(1)
}

// Values implements Hyperparameter.
func (n *Numeric[T]) Values() []any {
	if !n.integer() {
		if n.Min == n.Max {
			return []any{n.Min}
		}

		return nil
	}

	values := make([]any, 0, int(n.Cardinality()))
	for v := n.Min; ; v++ {
		values = append(values, v)

		if v == n.Max {
			break
		}
	}

	return values
}

// Default implements Hyperparameter.
func (n *Numeric[T]) Default() any {
	return n.def
}

func (n *Numeric[T]) integer() bool {
	switch any(n.Min).(type) {
	case float32, float64:
		return false
	default:
		return true
	}
}

//////
// Bool.
//////

// NewBool returns a boolean hyperparameter with the given default.
func NewBool(def bool) *Bool {
	return &Bool{def: def}
}

// Kind implements Hyperparameter.
func (b *Bool) Kind() Kind { return KindBool }

// Sample implements Hyperparameter.
func (b *Bool) Sample(rng *rand.Rand) any {
	return rng.Intn(2) == 1
}

// Transform implements Hyperparameter.
func (b *Bool) Transform(value any) (float64, error) {
	v, ok := value.(bool)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidProposal, "value %v (%T) is not a bool", value, value)
	}

	if v {
		return 1, nil
	}

	return 0, nil
}

// InverseTransform implements Hyperparameter.
func (b *Bool) InverseTransform(x float64) any {
	return x >= 0.5
}

// Cardinality implements Hyperparameter.
func (b *Bool) Cardinality() float64 { return 2 }

// Values implements Hyperparameter.
func (b *Bool) Values() []any { return []any{false, true} }

// Default implements Hyperparameter.
func (b *Bool) Default() any { return b.def }

//////
// Categorical.
//////

// NewCategorical returns a categorical hyperparameter. Choices must be unique
// scalars (string, bool or numbers). The default is the first choice.
func NewCategorical(choices []any) (*Categorical, error) {
	if len(choices) == 0 {
		return nil, errors.Wrap(ErrInvalidSearchSpace, "categorical hyperparameter needs at least one value")
	}

	c := &Categorical{choices: make([]any, 0, len(choices))}

	for _, choice := range choices {
		if !isScalar(choice) {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "categorical value %v (%T) is not a scalar", choice, choice)
		}

		if f, ok := toFloat64(choice); ok && math.IsNaN(f) {
			return nil, errors.Wrap(ErrInvalidSearchSpace, "categorical value NaN never matches a proposal")
		}

		// Numeric choices compare by value, 1 and 1.0 are the same choice.
		if c.index(choice) >= 0 {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "duplicated categorical value %v", choice)
		}

		c.choices = append(c.choices, choice)
	}

	c.def = c.choices[0]

	return c, nil
}

// WithDefault sets the default choice, which must be one of the values.
func (c *Categorical) WithDefault(value any) (*Categorical, error) {
	if c.index(value) < 0 {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "default %v is not one of %v", value, c.choices)
	}

	c.def = value

	return c, nil
}

// Kind implements Hyperparameter.
func (c *Categorical) Kind() Kind { return KindCategorical }

// Sample implements Hyperparameter.
func (c *Categorical) Sample(rng *rand.Rand) any {
	return c.choices[rng.Intn(len(c.choices))]
}

// Transform implements Hyperparameter.
func (c *Categorical) Transform(value any) (float64, error) {
	i := c.index(value)
	if i < 0 {
		return 0, errors.Wrapf(ErrInvalidProposal, "value %v is not one of %v", value, c.choices)
	}

	if len(c.choices) == 1 {
		return 0, nil
	}

	return float64(i) / float64(len(c.choices)-1), nil
}

// InverseTransform implements Hyperparameter.
func (c *Categorical) InverseTransform(x float64) any {
	i := int(math.Round(clampUnit(x) * float64(len(c.choices)-1)))

	return c.choices[i]
}

// Cardinality implements Hyperparameter.
func (c *Categorical) Cardinality() float64 { return float64(len(c.choices)) }

// Values implements Hyperparameter.
func (c *Categorical) Values() []any {
	cp := make([]any, len(c.choices))
	copy(cp, c.choices)

	return cp
}

// Default implements Hyperparameter.
func (c *Categorical) Default() any { return c.def }

func (c *Categorical) index(value any) int {
	if !isScalar(value) {
		return -1
	}

	for i, choice := range c.choices {
		if choice == value {
			return i
		}

		// YAML and JSON decode numbers as int or float64, proposals carry
		// whatever the caller used.
		a, okA := toFloat64(choice)
		b, okB := toFloat64(value)

		if okA && okB && a == b {
			return i
		}
	}

	return -1
}

//////
// Helper functions.
//////

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}

	return math.Min(math.Max(x, 0), 1)
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// toFloat64 converts any Go numeric value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func formatValue(v any) string {
	if f, ok := toFloat64(v); ok {
		return fmt.Sprintf("%v", f)
	}

	return fmt.Sprintf("%T:%v", v, v)
}
