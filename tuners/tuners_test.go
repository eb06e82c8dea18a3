package tuners

import (
	"bufio"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thalesfsp/tuneloop/tunable"
)

type proposer interface {
	Propose() (tunable.Proposal, error)
	Record(proposal tunable.Proposal, score float64) error
}

func mustSpace(t *testing.T, description map[string]any) *tunable.Tunable {
	t.Helper()

	space, err := tunable.FromDict(description)
	require.NoError(t, err)

	return space
}

func allTuners(t *testing.T, space *tunable.Tunable, opts Options) map[string]proposer {
	t.Helper()

	uniform, err := NewUniformTuner(space, opts)
	require.NoError(t, err)

	gp, err := NewGPTuner(space, opts)
	require.NoError(t, err)

	gpei, err := NewGPEiTuner(space, opts)
	require.NoError(t, err)

	gcp, err := NewGCPTuner(space, opts)
	require.NoError(t, err)

	gcpei, err := NewGCPEiTuner(space, opts)
	require.NoError(t, err)

	thompson, err := NewMetaModelTuner("gp-thompson", space, opts, ThompsonSampling, DefaultAcquisitionParams(), false)
	require.NoError(t, err)

	return map[string]proposer{
		"uniform":     uniform,
		"gp":          gp,
		"gpei":        gpei,
		"gcp":         gcp,
		"gcpei":       gcpei,
		"gp-thompson": thompson,
	}
}

func TestTunersRequireSpace(t *testing.T) {
	_, err := NewUniformTuner(nil, DefaultOptions())
	assert.Error(t, err)

	_, err = NewGPTuner(nil, DefaultOptions())
	assert.Error(t, err)

	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "int", "range": []any{0, 10}}})
	_, err = NewMetaModelTuner("custom", space, DefaultOptions(), nil, DefaultAcquisitionParams(), false)
	assert.Error(t, err)
}

func TestTunersProposeInsideTheSpace(t *testing.T) {
	space := mustSpace(t, map[string]any{
		"x":    map[string]any{"type": "float", "range": []any{-2.0, 2.0}},
		"n":    map[string]any{"type": "int", "range": []any{1, 20}},
		"kind": map[string]any{"type": "str", "values": []any{"a", "b", "c"}},
	})

	opts := DefaultOptions()
	opts.Seed = 42
	opts.NumCandidates = 50
	opts.MinTrials = 3

	for name, tuner := range allTuners(t, space, opts) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 12; i++ {
				p, err := tuner.Propose()
				require.NoError(t, err)

				_, err = space.Transform(p)
				require.NoError(t, err, "proposal %v outside of the space", p)

				x := p["x"].(float64)
				require.NoError(t, tuner.Record(p, -x*x))
			}
		})
	}
}

func TestTunersExhaustFiniteSpace(t *testing.T) {
	space := mustSpace(t, map[string]any{
		"a": map[string]any{"type": "int", "range": []any{0, 2}},
		"b": map[string]any{"type": "bool"},
	})

	opts := DefaultOptions()
	opts.Seed = 3
	opts.MinTrials = 2

	for name, tuner := range allTuners(t, space, opts) {
		t.Run(name, func(t *testing.T) {
			seen := map[string]struct{}{}

			for i := 0; i < 6; i++ {
				p, err := tuner.Propose()
				require.NoError(t, err)

				key := space.Key(p)
				assert.NotContains(t, seen, key, "duplicated proposal %v", p)
				seen[key] = struct{}{}

				require.NoError(t, tuner.Record(p, float64(i)))
			}

			_, err := tuner.Propose()
			assert.True(t, errors.Is(err, ErrExhaustedSearchSpace), "unexpected error: %v", err)
		})
	}
}

func TestAllowDuplicatesNeverExhausts(t *testing.T) {
	space := mustSpace(t, map[string]any{"b": map[string]any{"type": "bool"}})

	opts := DefaultOptions()
	opts.Seed = 1
	opts.AllowDuplicates = true

	tuner, err := NewUniformTuner(space, opts)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		p, err := tuner.Propose()
		require.NoError(t, err)
		require.NoError(t, tuner.Record(p, 1))
	}
}

func TestRecordValidation(t *testing.T) {
	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "int", "range": []any{0, 10}}})

	tuner, err := NewGPTuner(space, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, errors.Is(tuner.Record(tunable.Proposal{"x": 3}, math.NaN()), ErrInvalidScore))
	assert.True(t, errors.Is(tuner.Record(tunable.Proposal{"x": 30}, 1), tunable.ErrInvalidProposal))
	assert.True(t, errors.Is(tuner.Record(tunable.Proposal{"y": 3}, 1), tunable.ErrInvalidProposal))
	assert.Equal(t, 0, tuner.Trials())

	require.NoError(t, tuner.Record(tunable.Proposal{"x": 3}, math.Inf(-1)))
	assert.Equal(t, 1, tuner.Trials())
}

func TestGPTunerConvergesOnQuadratic(t *testing.T) {
	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "float", "range": []any{0.0, 1.0}}})

	opts := DefaultOptions()
	opts.Seed = 11
	opts.NumCandidates = 200
	opts.MinTrials = 4

	for _, newTuner := range []func(*tunable.Tunable, Options) (*MetaModelTuner, error){
		NewGPTuner, NewGPEiTuner, NewGCPTuner, NewGCPEiTuner,
	} {
		tuner, err := newTuner(space, opts)
		require.NoError(t, err)

		best := math.Inf(-1)

		for i := 0; i < 20; i++ {
			p, err := tuner.Propose()
			require.NoError(t, err)

			x := p["x"].(float64)
			score := -(x - 0.7) * (x - 0.7)
			best = math.Max(best, score)

			require.NoError(t, tuner.Record(p, score))
		}

		assert.Greater(t, best, -0.04, "tuner %s did not approach the optimum", tuner.name)
	}
}

func TestModelTunersIgnoreNonFiniteScores(t *testing.T) {
	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "float", "range": []any{0.0, 1.0}}})

	opts := DefaultOptions()
	opts.Seed = 5
	opts.MinTrials = 2

	tuner, err := NewGPEiTuner(space, opts)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		p, err := tuner.Propose()
		require.NoError(t, err)

		score := p["x"].(float64)
		if i%2 == 0 {
			score = math.Inf(-1)
		}

		require.NoError(t, tuner.Record(p, score))
	}
}

func TestDebugTrace(t *testing.T) {
	dir := t.TempDir()
	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "int", "range": []any{0, 10}}})

	opts := DefaultOptions()
	opts.Seed = 9
	opts.MinTrials = 2
	opts.DebugPath = dir

	tuner, err := NewGCPEiTuner(space, opts)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, TraceFile))
	assert.True(t, os.IsNotExist(err), "trace file must be created lazily")

	for i := 0; i < 4; i++ {
		p, err := tuner.Propose()
		require.NoError(t, err)
		require.NoError(t, tuner.Record(p, float64(i)))
	}

	f, err := os.Open(filepath.Join(dir, TraceFile))
	require.NoError(t, err)
	defer f.Close()

	var events []TraceEvent

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e TraceEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}

	require.NoError(t, scanner.Err())
	require.Len(t, events, 8)

	assert.Equal(t, "propose", events[0].Event)
	assert.Equal(t, "random", events[0].Phase)
	assert.Equal(t, "record", events[1].Event)
	assert.Equal(t, "gcpei", events[1].Tuner)
	assert.Equal(t, "model", events[4].Phase)
	assert.NotNil(t, events[4].Acquisition)
	assert.Equal(t, 3, events[5].Trial)
}

func TestNoTraceWithoutDebugPath(t *testing.T) {
	space := mustSpace(t, map[string]any{"x": map[string]any{"type": "int", "range": []any{0, 10}}})

	tuner, err := NewUniformTuner(space, DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, tuner.tracer)
}
