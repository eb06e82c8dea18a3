package tuners

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/thalesfsp/tuneloop/tunable"
)

// MetaModelTuner fits a Gaussian Process to the recorded trials and proposes
// the candidate that maximises an acquisition function over the model
// prediction.
//
// How it works:
// 1. The first MinTrials proposals are uniformly random
// 2. For each later proposal:
//   - Fits the Gaussian Process to every finite recorded score
//   - Generates NumCandidates random, not yet recorded, candidates
//   - Predicts mean and variance at each candidate
//   - Returns the candidate with the highest acquisition value
//
// With Copula enabled, scores are replaced by the standard normal quantiles of
// their empirical CDF before fitting. The model then only sees the ranking of
// scores, which makes it robust to skewed or heavy tailed objectives.
type MetaModelTuner struct {
	*base

	gp          *gaussianProcess
	acquisition AcquisitionFunc
	params      AcquisitionParams
	copula      bool
}

// NewMetaModelTuner returns a model based tuner using the given acquisition
// function. It is the building block of the GP and GCP variants, and the
// entry point for custom variants.
func NewMetaModelTuner(
	name string,
	space *tunable.Tunable,
	opts Options,
	acquisition AcquisitionFunc,
	params AcquisitionParams,
	copula bool,
) (*MetaModelTuner, error) {
	if acquisition == nil {
		return nil, fmt.Errorf("tuner %s: acquisition function is required", name)
	}

	b, err := newBase(name, space, opts)
	if err != nil {
		return nil, err
	}

	return &MetaModelTuner{
		base:        b,
		gp:          newGaussianProcess(),
		acquisition: acquisition,
		params:      params,
		copula:      copula,
	}, nil
}

// NewGPTuner returns a Gaussian Process tuner proposing the candidate with
// the highest predicted score.
func NewGPTuner(space *tunable.Tunable, opts Options) (*MetaModelTuner, error) {
	return NewMetaModelTuner("gp", space, opts, PredictedScore, DefaultAcquisitionParams(), false)
}

// NewGPEiTuner returns a Gaussian Process tuner using Expected Improvement.
func NewGPEiTuner(space *tunable.Tunable, opts Options) (*MetaModelTuner, error) {
	return NewMetaModelTuner("gpei", space, opts, ExpectedImprovement, DefaultAcquisitionParams(), false)
}

// NewGCPTuner returns a Gaussian Copula Process tuner proposing the candidate
// with the highest predicted latent score.
func NewGCPTuner(space *tunable.Tunable, opts Options) (*MetaModelTuner, error) {
	return NewMetaModelTuner("gcp", space, opts, PredictedScore, DefaultAcquisitionParams(), true)
}

// NewGCPEiTuner returns a Gaussian Copula Process tuner using Expected
// Improvement in the latent space.
func NewGCPEiTuner(space *tunable.Tunable, opts Options) (*MetaModelTuner, error) {
	return NewMetaModelTuner("gcpei", space, opts, ExpectedImprovement, DefaultAcquisitionParams(), true)
}

// Propose returns the next proposal to evaluate.
func (m *MetaModelTuner) Propose() (tunable.Proposal, error) {
	x, y := finiteObservations(m.trials, m.scores)

	if len(m.scores) < m.opts.MinTrials || len(y) == 0 {
		return m.proposeRandom()
	}

	candidates, err := m.candidates(m.opts.NumCandidates)
	if err != nil {
		return nil, err
	}

	if m.copula {
		y = copulaTransform(y)
	}

	if err := m.gp.Fit(x, y); err != nil {
		return nil, fmt.Errorf("tuner %s: fitting model on %d trials: %w", m.name, len(y), err)
	}

	params := m.params
	params.BestSoFar = maxOf(y)
	params.RandomState = m.rng

	var (
		best                            tunable.Proposal
		bestAcq, bestMean, bestVariance = math.Inf(-1), 0.0, 0.0
	)

	for _, c := range candidates {
		cx, err := m.space.Transform(c)
		if err != nil {
			return nil, fmt.Errorf("tuner %s: %w", m.name, err)
		}

		mean, variance := m.gp.Predict(cx)

		acq := m.acquisition(mean, variance, params)
		if best == nil || acq > bestAcq {
			best, bestAcq, bestMean, bestVariance = c, acq, mean, variance
		}
	}

	m.logger.WithFields(logrus.Fields{
		"candidates":  len(candidates),
		"acquisition": bestAcq,
		"mean":        bestMean,
	}).Debug("Selected candidate.")

	m.trace(TraceEvent{
		Event:       "propose",
		Trial:       m.Trials() + 1,
		Phase:       "model",
		Candidates:  len(candidates),
		Proposal:    best,
		Mean:        finite(bestMean),
		Std:         finite(math.Sqrt(bestVariance)),
		Acquisition: finite(bestAcq),
		Extra:       map[string]string{"copula": fmt.Sprint(m.copula)},
	})

	return best, nil
}

func (m *MetaModelTuner) proposeRandom() (tunable.Proposal, error) {
	candidates, err := m.candidates(1)
	if err != nil {
		return nil, err
	}

	m.trace(TraceEvent{
		Event:      "propose",
		Trial:      m.Trials() + 1,
		Phase:      "random",
		Candidates: len(candidates),
		Proposal:   candidates[0],
	})

	return candidates[0], nil
}
