package tuners

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianProcessWithoutObservations(t *testing.T) {
	gp := newGaussianProcess()

	mean, variance := gp.Predict([]float64{0.5})
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 1.0, variance)
}

func TestGaussianProcessInterpolates(t *testing.T) {
	gp := newGaussianProcess()

	x := [][]float64{{0.1}, {0.4}, {0.9}}
	y := []float64{1, 3, 2}
	require.NoError(t, gp.Fit(x, y))

	for i := range x {
		mean, variance := gp.Predict(x[i])
		assert.InDelta(t, y[i], mean, 1e-3)
		assert.Less(t, variance, 1e-3)
	}

	// Uncertainty grows away from the data.
	_, near := gp.Predict([]float64{0.42})
	_, far := gp.Predict([]float64{0.65})
	assert.Greater(t, far, near)
}

func TestGaussianProcessToleratesDuplicatedPoints(t *testing.T) {
	gp := newGaussianProcess()

	require.NoError(t, gp.Fit([][]float64{{0.5}, {0.5}, {0.5}}, []float64{1, 1, 1}))

	mean, variance := gp.Predict([]float64{0.5})
	assert.InDelta(t, 1.0, mean, 1e-6)
	assert.False(t, math.IsNaN(variance))
}

func TestGaussianProcessFitValidation(t *testing.T) {
	gp := newGaussianProcess()

	assert.Error(t, gp.Fit([][]float64{{0.1}}, []float64{1, 2}))
	assert.Panics(t, func() { gp.RBFKernel([]float64{1}, []float64{1, 2}) })
}

func TestRBFKernel(t *testing.T) {
	gp := newGaussianProcess()

	assert.Equal(t, 1.0, gp.RBFKernel([]float64{0.2, 0.3}, []float64{0.2, 0.3}))
	assert.Less(t, gp.RBFKernel([]float64{0, 0}, []float64{1, 1}), gp.RBFKernel([]float64{0, 0}, []float64{0.1, 0.1}))
}

func TestGaussianProcessSolvesKernelSystem(t *testing.T) {
	gp := newGaussianProcess()

	x := [][]float64{{0.0}, {0.3}, {0.8}}
	y := []float64{2, -1, 4}
	require.NoError(t, gp.Fit(x, y))

	// K alpha must reproduce the standardised targets.
	for i := range x {
		var sum float64
		for j := range x {
			k := gp.RBFKernel(x[i], x[j])
			if i == j {
				k += gp.noise
			}

			sum += k * gp.alpha.AtVec(j)
		}

		assert.InDelta(t, (y[i]-gp.yMean)/gp.yStd, sum, 1e-6)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	mean, std = meanStd([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.Zero(t, std)

	mean, std = meanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
