// Package tuneloop drives pluggable hyperparameter tuners against black-box
// scoring functions. A run asks a tuner for a proposal, evaluates it, records
// the score back into the tuner and keeps the best score, for a fixed budget
// of iterations.
//
// # Features
//
// The package includes the following key features:
//
//   - Interchangeable Tuners: Gaussian Process (GP), GP with Expected
//     Improvement, Gaussian Copula Process (GCP), GCP with Expected
//     Improvement, and a uniform random baseline, all behind one Tuner
//     interface
//   - Open Variant Registry: register additional tuners with RegisterVariant
//     without touching the loop
//   - Declarative Search Spaces: int, float, bool and categorical
//     hyperparameters described as maps, YAML or JSON (see package tunable)
//   - Debug Capture: per scoring function trace directories written by the
//     model based tuners
//   - Progress Monitoring: per iteration updates via channels
//   - Metrics: Prometheus counters and histograms for runs and evaluations
//
// # Quick Start
//
//	description := map[string]any{
//	    "max_depth":    map[string]any{"type": "int", "range": []any{1, 20}},
//	    "max_features": map[string]any{"type": "float", "range": []any{0.1, 1.0}},
//	    "criterion":    map[string]any{"type": "str", "values": []any{"gini", "entropy"}},
//	}
//
//	scoring := func(ctx context.Context, params tunable.Proposal) (float64, error) {
//	    return crossValidate(ctx, params)
//	}
//
//	best, err := tuneloop.Run(ctx, tuneloop.DefaultConfig(), tuneloop.VariantGCPEi, scoring, description, 100)
//
// Each built-in variant also has a pre-bound tuning function: GPTuning,
// GPEiTuning, GCPTuning, GCPEiTuning and UniformTuning.
//
// # Variants
//
// 1. GP ("gp"):
//
//   - Fits a Gaussian Process to the recorded scores
//
//   - Proposes the candidate with the highest predicted score
//
//   - Pure exploitation, converges fast on smooth objectives
//
// 2. GP-EI ("gpei"):
//
//   - Same model, candidates ranked by Expected Improvement
//
//   - Balances improvement probability and magnitude
//
// 3. GCP ("gcp") and GCP-EI ("gcpei"):
//
//   - Scores are mapped through a Gaussian copula before fitting
//
//   - Robust to skewed objectives and outliers
//
// 4. Uniform ("uniform"):
//
//   - Uniformly random proposals
//
//   - Baseline for benchmarks
//
// # Debug Capture
//
// Set Config.DebugBasePath and Config.DebugLabel to have the driver create
// <DebugBasePath>/<DebugLabel> once, before the tuner is constructed, and hand
// it to the tuner. Model based tuners append JSON lines to trace.jsonl in that
// directory. The driver never reads it back.
//
// # Errors
//
// Runs never recover from errors. A failed iteration returns an
// *IterationError carrying the 1-indexed iteration, wrapping ErrEvaluation
// (scoring function) or ErrTuner (propose/record) and the originating error.
//
// # Thread Safety
//
//   - Iterations of one run are strictly sequential: each proposal depends on
//     every prior record
//   - Independent runs may execute concurrently, each owns its tuner
//   - The variant registry is safe for concurrent use
package tuneloop
