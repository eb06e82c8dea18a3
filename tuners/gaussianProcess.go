package tuners

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//////
// Const, vars, types.
//////

// errNotPositiveDefinite is returned when the kernel matrix cannot be
// factorised even after adding jitter.
var errNotPositiveDefinite = errors.New("kernel matrix is not positive definite")

// gaussianProcess implements a thread-safe Gaussian Process regression model
// over points of the unit hypercube. It is used to predict the score of
// untested hyperparameter combinations from previously observed results.
//
// Fields:
// - mu: RWMutex for thread-safe access to all fields
// - X: Observed input points (each point is a slice of float64)
// - Y: Observed scores at each input point
// - sigma: Kernel length scale controlling the smoothness of interpolation
// - noise: Observation noise added to the kernel diagonal
//
// Targets are standardised before fitting, so predictions are returned on
// the scale of Y.
type gaussianProcess struct {
	// mu protects access to all fields
	mu sync.RWMutex

	// X stores the input points (hyperparameter combinations)
	X [][]float64

	// Y stores the observed scores at each point in X
	Y []float64

	// sigma is the kernel length scale
	sigma float64

	// noise is added to the diagonal of the kernel matrix
	noise float64

	// yMean and yStd standardise Y
	yMean float64
	yStd  float64

	// chol is the Cholesky factorisation of the kernel matrix
	chol *mat.Cholesky

	// alpha solves K alpha = standardised Y
	alpha *mat.VecDense
}

//////
// Methods.
//////

// RBFKernel implements the Radial Basis Function (Gaussian) kernel.
//
// Mathematical formula:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Important notes:
// - Panics if input vectors have different lengths
// - Returns 1.0 for identical points.
func (gp *gaussianProcess) RBFKernel(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	// Calculate squared Euclidean distance
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	// Apply RBF kernel formula
	return math.Exp(-sum / (2 * gp.sigma * gp.sigma))
}

// Fit replaces the training data and factorises the kernel matrix.
//
// Parameters:
// - x: Input points, all of the same length
// - y: Observed scores, same length as x
//
// Important notes:
// - Creates deep copies of the inputs
// - Jitter is added to the diagonal until the matrix factorises, so
//   duplicated points are tolerated.
func (gp *gaussianProcess) Fit(x [][]float64, y []float64) error {
	if len(x) != len(y) {
		return errors.New("inputs and targets must have the same length")
	}

	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.X = make([][]float64, len(x))
	for i := range x {
		gp.X[i] = append([]float64(nil), x[i]...)
	}

	gp.Y = append([]float64(nil), y...)

	gp.yMean, gp.yStd = meanStd(gp.Y)
	if gp.yStd == 0 {
		gp.yStd = 1
	}

	n := len(gp.X)
	if n == 0 {
		gp.chol, gp.alpha = nil, nil

		return nil
	}

	target := mat.NewVecDense(n, nil)
	for i, v := range gp.Y {
		target.SetVec(i, (v-gp.yMean)/gp.yStd)
	}

	for jitter := 0.0; jitter <= 1e-1; jitter = nextJitter(jitter) {
		k := mat.NewSymDense(n, nil)

		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				k.SetSym(i, j, gp.RBFKernel(gp.X[i], gp.X[j]))
			}

			k.SetSym(i, i, k.At(i, i)+gp.noise+jitter)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(k); !ok {
			continue
		}

		var alpha mat.VecDense
		if err := solveVec(&chol, &alpha, target); err != nil {
			continue
		}

		gp.chol = &chol
		gp.alpha = &alpha

		return nil
	}

	return errNotPositiveDefinite
}

// Predict estimates the score and its uncertainty at a given point.
//
// Returns:
// - mean: Expected score at the input point
// - variance: Uncertainty of the prediction (higher = less certain)
//
// Returns (0, 1) if no observations exist.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	// Handle case with no observations
	if len(gp.X) == 0 {
		return 0, 1
	}

	// Calculate kernel values between x and all observed points
	k := mat.NewVecDense(len(gp.X), nil)
	for i := range gp.X {
		k.SetVec(i, gp.RBFKernel(x, gp.X[i]))
	}

	standardised := mat.Dot(k, gp.alpha)

	// Prior variance minus the variance explained by the observations.
	var w mat.VecDense
	if err := solveVec(gp.chol, &w, k); err != nil {
		return standardised*gp.yStd + gp.yMean, gp.yStd * gp.yStd
	}

	variance = math.Max(1.0-mat.Dot(k, &w), 1e-12)

	return standardised*gp.yStd + gp.yMean, variance * gp.yStd * gp.yStd
}

//////
// Factory.
//////

// newGaussianProcess creates a Gaussian Process with defaults suitable for
// inputs normalised to the unit hypercube.
func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{
		sigma: 0.3,  // Default kernel length scale
		noise: 1e-6, // Near noiseless observations
		yStd:  1,
	}
}

//////
// Helper functions.
//////

func nextJitter(j float64) float64 {
	if j == 0 {
		return 1e-10
	}

	return j * 10
}

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		// stat divides by n-1 before rescaling, which is NaN for one value.
		return values[0], 0
	}

	return stat.PopMeanStdDev(values, nil)
}

// solveVec solves K dst = b. Condition warnings are tolerated: jitter keeps
// the factorisation usable even when the kernel matrix is ill-conditioned.
func solveVec(chol *mat.Cholesky, dst *mat.VecDense, b mat.Vector) error {
	err := chol.SolveVecTo(dst, b)

	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil
	}

	return err
}
