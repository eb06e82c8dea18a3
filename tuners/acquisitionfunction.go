package tuners

import (
	"math"
	"math/rand"
)

//////
// Available acquisition functions for the model based tuners.
// Each function helps decide which candidate to propose next by balancing
// exploration (trying new areas) and exploitation (focusing on known good areas).
// Scores are maximised: higher acquisition values are more promising.
//////

// AcquisitionFunc scores a candidate from the surrogate model prediction at
// that point.
//
// Parameters:
// - mean: The predicted score at the candidate (higher is better)
// - variance: The predicted variance/uncertainty at the candidate
// - params: Additional parameters needed by specific acquisition functions
//
// Returns:
// - float64: Acquisition value (higher values indicate more promising candidates)
//
// Implementation notes for custom acquisition functions:
// - Should handle zero variance
// - Must be deterministic given params.RandomState.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds the parameters acquisition functions may consult.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off of
	// UpperConfidenceBound. Higher values explore more.
	Beta float64

	// Xi is the minimum improvement over BestSoFar that PI and EI look for.
	Xi float64

	// BestSoFar is the best (highest) observed score, on the scale the model
	// was fitted on. Set by the tuner before every proposal.
	BestSoFar float64

	// RandomState drives ThompsonSampling. Set by the tuner to its own seeded
	// source before every proposal.
	RandomState *rand.Rand
}

// DefaultAcquisitionParams returns the parameters used by the built-in tuners.
func DefaultAcquisitionParams() AcquisitionParams {
	return AcquisitionParams{
		Beta: 2.0,
		Xi:   0.01,
	}
}

// PredictedScore ranks candidates by their predicted mean only. Pure
// exploitation.
func PredictedScore(mean, _ float64, _ AcquisitionParams) float64 {
	return mean
}

// UpperConfidenceBound adds Beta standard deviations to the predicted mean.
//
// Example:
//
//	value := UpperConfidenceBound(0.5, 0.04, AcquisitionParams{Beta: 2.0}) // 0.9
func UpperConfidenceBound(mean, variance float64, params AcquisitionParams) float64 {
	return mean + params.Beta*math.Sqrt(math.Max(variance, 0))
}

// ProbabilityOfImprovement calculates the probability that a candidate scores
// above BestSoFar + Xi.
//
// When to use:
// - When you want to be conservative in exploring new points
// - When small but likely improvements are preferred
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	improvement := mean - params.BestSoFar - params.Xi

	sigma := math.Sqrt(math.Max(variance, 0))
	if sigma == 0 {
		if improvement > 0 {
			return 1
		}

		return 0
	}

	return normalCDF(improvement / sigma)
}

// ExpectedImprovement calculates the expected value of the improvement over
// BestSoFar + Xi.
//
// How it works:
// - Combines the probability of improvement with the magnitude of improvement
// - Balances how likely and how large the improvement might be
//
// Example:
//
//	params := AcquisitionParams{
//	    BestSoFar: 1.0,  // Current best score
//	    Xi: 0.01,        // Minimum improvement
//	}
//	expected := ExpectedImprovement(1.2, 0.2, params)
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	improvement := mean - params.BestSoFar - params.Xi

	sigma := math.Sqrt(math.Max(variance, 0))
	if sigma == 0 {
		return math.Max(improvement, 0)
	}

	z := improvement / sigma

	return improvement*normalCDF(z) + sigma*normalPDF(z)
}

// ThompsonSampling draws a sample from the predicted distribution at the
// candidate, so the next proposal is chosen with probability proportional to
// its chance of being the best.
//
// When to use:
// - When you want to avoid the complexity of tuning Beta or Xi
// - In problems where random exploration is acceptable
//
// Without a RandomState it degenerates to PredictedScore.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	if params.RandomState == nil {
		return mean
	}

	return mean + math.Sqrt(math.Max(variance, 0))*params.RandomState.NormFloat64()
}
