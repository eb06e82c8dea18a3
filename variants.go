package tuneloop

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/thalesfsp/tuneloop/tunable"
	"github.com/thalesfsp/tuneloop/tuners"
)

// Variant selects the search strategy backing a run.
type Variant string

// Built-in variants.
const (
	// VariantGP is a Gaussian Process tuner maximising the predicted score.
	VariantGP Variant = "gp"

	// VariantGPEi is a Gaussian Process tuner using Expected Improvement.
	VariantGPEi Variant = "gpei"

	// VariantGCP is a Gaussian Copula Process tuner maximising the predicted
	// score.
	VariantGCP Variant = "gcp"

	// VariantGCPEi is a Gaussian Copula Process tuner using Expected
	// Improvement.
	VariantGCPEi Variant = "gcpei"

	// VariantUniform is the uniformly random baseline.
	VariantUniform Variant = "uniform"
)

var variantRegistry = struct {
	mu sync.RWMutex
	m  map[Variant]TunerFactory
}{
	m: make(map[Variant]TunerFactory),
}

func init() {
	MustRegisterVariant(VariantGP, func(space *tunable.Tunable, opts TunerOptions) (Tuner, error) {
		return tuners.NewGPTuner(space, opts)
	})
	MustRegisterVariant(VariantGPEi, func(space *tunable.Tunable, opts TunerOptions) (Tuner, error) {
		return tuners.NewGPEiTuner(space, opts)
	})
	MustRegisterVariant(VariantGCP, func(space *tunable.Tunable, opts TunerOptions) (Tuner, error) {
		return tuners.NewGCPTuner(space, opts)
	})
	MustRegisterVariant(VariantGCPEi, func(space *tunable.Tunable, opts TunerOptions) (Tuner, error) {
		return tuners.NewGCPEiTuner(space, opts)
	})
	MustRegisterVariant(VariantUniform, func(space *tunable.Tunable, opts TunerOptions) (Tuner, error) {
		return tuners.NewUniformTuner(space, opts)
	})
}

// RegisterVariant makes a tuner factory available to Run under name.
func RegisterVariant(name Variant, factory TunerFactory) error {
	if name == "" {
		return errors.New("variant name is required")
	}

	if factory == nil {
		return errors.New("tuner factory is required")
	}

	variantRegistry.mu.Lock()
	defer variantRegistry.mu.Unlock()

	if _, exists := variantRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrVariantExists, name)
	}

	variantRegistry.m[name] = factory

	return nil
}

// MustRegisterVariant is RegisterVariant that panics on error.
func MustRegisterVariant(name Variant, factory TunerFactory) {
	if err := RegisterVariant(name, factory); err != nil {
		panic(err)
	}
}

// LookupVariant returns the factory registered under name.
func LookupVariant(name Variant) (TunerFactory, error) {
	variantRegistry.mu.RLock()
	defer variantRegistry.mu.RUnlock()

	factory, ok := variantRegistry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVariant, name)
	}

	return factory, nil
}

// Variants returns the registered variant names, sorted.
func Variants() []Variant {
	variantRegistry.mu.RLock()
	defer variantRegistry.mu.RUnlock()

	names := make([]Variant, 0, len(variantRegistry.m))
	for name := range variantRegistry.m {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}
