package tuners

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Helper functions.
//////

// Helper function used by PI and EI to compute the cumulative distribution
// function of the standard normal distribution.
//
// Returns:
// - Probability that a standard normal random variable is less than x.
func normalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// Helper function used by EI to compute the probability density function
// of the standard normal distribution.
//
// Returns:
// - Value of the standard normal PDF at x.
func normalPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// normalQuantile is the inverse of normalCDF. p must be in (0, 1).
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// copulaTransform maps scores onto the standard normal quantiles of their
// empirical CDF. Ties share their average rank, so equal scores map to equal
// latent values and the ordering of scores is preserved.
//
// Usage example:
//
//	latent := copulaTransform([]float64{0.2, 0.9, 0.5})
//	// latent[1] > latent[2] > latent[0]
func copulaTransform(scores []float64) []float64 {
	n := len(scores)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	latent := make([]float64, n)

	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}

		// Average 1-based rank of the tie group [i, j].
		rank := float64(i+j)/2 + 1
		z := normalQuantile(rank / float64(n+1))

		for k := i; k <= j; k++ {
			latent[order[k]] = z
		}

		i = j + 1
	}

	return latent
}

// finiteObservations drops trials whose score is not a finite number. Such
// scores carry no magnitude a regression model can fit.
func finiteObservations(trials [][]float64, scores []float64) ([][]float64, []float64) {
	x := make([][]float64, 0, len(trials))
	y := make([]float64, 0, len(scores))

	for i, s := range scores {
		if math.IsInf(s, 0) || math.IsNaN(s) {
			continue
		}

		x = append(x, trials[i])
		y = append(y, s)
	}

	return x, y
}

// maxOf returns the largest value of a non-empty slice.
func maxOf(values []float64) float64 {
	best := math.Inf(-1)
	for _, v := range values {
		if v > best {
			best = v
		}
	}

	return best
}
