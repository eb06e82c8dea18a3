package main

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/thalesfsp/tuneloop"
	"github.com/thalesfsp/tuneloop/tunable"
)

// objectives are synthetic scoring functions for exercising tuners without
// training real models. Minimisation problems are negated so higher is
// better.
var objectives = map[string]tuneloop.ScoringFunc{
	"constant": func(context.Context, tunable.Proposal) (float64, error) {
		return 5.0, nil
	},
	"sphere": func(_ context.Context, params tunable.Proposal) (float64, error) {
		xs, err := numericParams(params, 1)
		if err != nil {
			return 0, err
		}

		var sum float64
		for _, x := range xs {
			sum += x * x
		}

		return -sum, nil
	},
	"rosenbrock": func(_ context.Context, params tunable.Proposal) (float64, error) {
		xs, err := numericParams(params, 2)
		if err != nil {
			return 0, err
		}

		var sum float64
		for i := 0; i < len(xs)-1; i++ {
			sum += 100*math.Pow(xs[i+1]-xs[i]*xs[i], 2) + math.Pow(1-xs[i], 2)
		}

		return -sum, nil
	},
	"branin": func(_ context.Context, params tunable.Proposal) (float64, error) {
		xs, err := numericParams(params, 2)
		if err != nil {
			return 0, err
		}

		x, y := xs[0], xs[1]

		const (
			a = 1.0
			r = 6.0
			s = 10.0
		)

		b := 5.1 / (4 * math.Pi * math.Pi)
		c := 5 / math.Pi
		tt := 1 / (8 * math.Pi)

		return -(a*math.Pow(y-b*x*x+c*x-r, 2) + s*(1-tt)*math.Cos(x) + s), nil
	},
}

func objectiveNames() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// numericParams returns the numeric values of params ordered by name.
// Booleans count as 0 or 1, other values are skipped.
func numericParams(params tunable.Proposal, minimum int) ([]float64, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	xs := make([]float64, 0, len(names))

	for _, name := range names {
		switch v := params[name].(type) {
		case int64:
			xs = append(xs, float64(v))
		case float64:
			xs = append(xs, v)
		case bool:
			if v {
				xs = append(xs, 1)
			} else {
				xs = append(xs, 0)
			}
		}
	}

	if len(xs) < minimum {
		return nil, fmt.Errorf("objective needs at least %d numeric hyperparameters, got %d", minimum, len(xs))
	}

	return xs, nil
}
