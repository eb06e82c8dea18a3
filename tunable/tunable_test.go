package tunable

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDictMinimalSpace(t *testing.T) {
	space, err := FromDict(map[string]any{
		"x": map[string]any{"type": "int", "range": []any{0, 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, space.Names())
	assert.Equal(t, 1, space.Dimensions())
	assert.Equal(t, 11.0, space.Cardinality())
	assert.True(t, space.Finite())
	assert.Equal(t, Proposal{"x": int64(0)}, space.Defaults())
}

func TestFromDictAllKinds(t *testing.T) {
	space, err := FromDict(map[string]any{
		"depth":     map[string]any{"type": "int", "range": []any{1, 4}, "default": 2},
		"rate":      map[string]any{"type": "float", "range": []any{0.0, 1.0}, "default": 0.5},
		"bootstrap": map[string]any{"type": "bool", "default": true},
		"criterion": map[string]any{"type": "str", "values": []any{"gini", "entropy"}, "default": "entropy"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bootstrap", "criterion", "depth", "rate"}, space.Names())
	assert.True(t, math.IsInf(space.Cardinality(), 1))
	assert.False(t, space.Finite())
	assert.Equal(t, Proposal{
		"bootstrap": true,
		"criterion": "entropy",
		"depth":     int64(2),
		"rate":      0.5,
	}, space.Defaults())
}

func TestFromDictTypedSlices(t *testing.T) {
	tests := []struct {
		name       string
		definition map[string]any
		want       float64
	}{
		{"int range", map[string]any{"type": "int", "range": []int{0, 10}}, 11},
		{"int64 range", map[string]any{"type": "int", "range": []int64{-2, 2}}, 5},
		{"float range", map[string]any{"type": "float", "range": []float64{0.5, 0.5}}, 1},
		{"array range", map[string]any{"type": "int", "range": [2]int{1, 3}}, 3},
		{"string values", map[string]any{"type": "str", "values": []string{"gini", "entropy"}}, 2},
		{"int values", map[string]any{"type": "categorical", "values": []int{8, 16, 32}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space, err := FromDict(map[string]any{"x": tt.definition})
			require.NoError(t, err)
			assert.Equal(t, tt.want, space.Cardinality())

			rng := rand.New(rand.NewSource(1))
			_, err = space.Transform(space.Sample(rng, 1)[0])
			assert.NoError(t, err)
		})
	}
}

func TestWideIntRangeIsRejected(t *testing.T) {
	for _, bounds := range [][]any{
		{-5e18, 5e18},
		{int64(math.MinInt64), int64(math.MaxInt64)},
		{int64(0), int64(math.MaxInt64)},
		{0, 1e19},
	} {
		_, err := FromDict(map[string]any{"x": map[string]any{"type": "int", "range": bounds}})
		assert.True(t, errors.Is(err, ErrInvalidSearchSpace), "range %v: %v", bounds, err)
	}

	_, err := NewInt(math.MinInt64, -1)
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))

	_, err = NewInt(math.MinInt64, -2)
	require.NoError(t, err)

	// The widest accepted range still samples without panicking.
	hp, err := NewInt(-(1 << 62), 1<<62)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := hp.Sample(rng).(int64)
		assert.GreaterOrEqual(t, v, int64(-(1 << 62)))
		assert.LessOrEqual(t, v, int64(1<<62))
	}
}

func TestCategoricalRejectsEquivalentValues(t *testing.T) {
	_, err := NewCategorical([]any{1, 1.0})
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))

	_, err = NewCategorical([]any{int64(3), uint8(3)})
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))

	_, err = NewCategorical([]any{"a", math.NaN()})
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))

	hp, err := NewCategorical([]any{1, "1", true})
	require.NoError(t, err)
	assert.Equal(t, 3.0, hp.Cardinality())
}

func TestFromDictInvalid(t *testing.T) {
	tests := []struct {
		name        string
		description map[string]any
	}{
		{"empty", map[string]any{}},
		{"not a mapping", map[string]any{"x": 3}},
		{"missing type", map[string]any{"x": map[string]any{"range": []any{0, 1}}}},
		{"unknown type", map[string]any{"x": map[string]any{"type": "complex"}}},
		{"range too short", map[string]any{"x": map[string]any{"type": "int", "range": []any{0}}}},
		{"range not numeric", map[string]any{"x": map[string]any{"type": "float", "range": []any{"a", 1}}}},
		{"fractional int range", map[string]any{"x": map[string]any{"type": "int", "range": []any{0.5, 3}}}},
		{"inverted range", map[string]any{"x": map[string]any{"type": "int", "range": []any{10, 0}}}},
		{"default outside range", map[string]any{"x": map[string]any{"type": "int", "range": []any{0, 10}, "default": 11}}},
		{"bool default", map[string]any{"x": map[string]any{"type": "bool", "default": "yes"}}},
		{"no values", map[string]any{"x": map[string]any{"type": "str"}}},
		{"empty values", map[string]any{"x": map[string]any{"type": "str", "values": []any{}}}},
		{"duplicated values", map[string]any{"x": map[string]any{"type": "str", "values": []any{"a", "a"}}}},
		{"unknown default", map[string]any{"x": map[string]any{"type": "str", "values": []any{"a"}, "default": "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDict(tt.description)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSearchSpace), "unexpected error: %v", err)
		})
	}
}

func TestFromYAML(t *testing.T) {
	space, err := FromYAML([]byte(`
n_estimators:
  type: int
  range: [10, 500]
max_features:
  type: float
  range: [0.1, 1.0]
criterion:
  type: str
  values: [gini, entropy]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"criterion", "max_features", "n_estimators"}, space.Names())

	// JSON is valid YAML.
	space, err = FromYAML([]byte(`{"x": {"type": "int", "range": [0, 10]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, space.Names())

	_, err = FromYAML([]byte("x: [unterminated"))
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))
}

func TestTransformRoundTrip(t *testing.T) {
	space, err := FromDict(map[string]any{
		"depth":     map[string]any{"type": "int", "range": []any{1, 5}},
		"rate":      map[string]any{"type": "float", "range": []any{-1.0, 1.0}},
		"bootstrap": map[string]any{"type": "bool"},
		"criterion": map[string]any{"type": "str", "values": []any{"gini", "entropy", "log_loss"}},
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))

	for _, p := range space.Sample(rng, 50) {
		x, err := space.Transform(p)
		require.NoError(t, err)
		require.Len(t, x, 4)

		for _, xi := range x {
			assert.GreaterOrEqual(t, xi, 0.0)
			assert.LessOrEqual(t, xi, 1.0)
		}

		back, err := space.InverseTransform(x)
		require.NoError(t, err)
		assert.Equal(t, p["depth"], back["depth"])
		assert.Equal(t, p["bootstrap"], back["bootstrap"])
		assert.Equal(t, p["criterion"], back["criterion"])
		assert.InDelta(t, p["rate"].(float64), back["rate"].(float64), 1e-9)
	}
}

func TestTransformRejectsProposalsOutsideTheSpace(t *testing.T) {
	space, err := FromDict(map[string]any{
		"x": map[string]any{"type": "int", "range": []any{0, 10}},
	})
	require.NoError(t, err)

	for _, p := range []Proposal{
		{},
		{"y": 1},
		{"x": 11},
		{"x": 1.5},
		{"x": "one"},
		{"x": 1, "y": 2},
	} {
		_, err := space.Transform(p)
		assert.True(t, errors.Is(err, ErrInvalidProposal), "proposal %v: %v", p, err)
	}

	x, err := space.Transform(Proposal{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, x)
}

func TestInverseTransformClamps(t *testing.T) {
	hp, err := NewInt(0, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(0), hp.InverseTransform(-3))
	assert.Equal(t, int64(10), hp.InverseTransform(7))
	assert.Equal(t, int64(5), hp.InverseTransform(0.5))
}

func TestEnumerate(t *testing.T) {
	space, err := FromDict(map[string]any{
		"a": map[string]any{"type": "int", "range": []any{0, 2}},
		"b": map[string]any{"type": "bool"},
	})
	require.NoError(t, err)

	proposals, err := space.Enumerate(100)
	require.NoError(t, err)
	require.Len(t, proposals, 6)

	keys := map[string]struct{}{}
	for _, p := range proposals {
		keys[space.Key(p)] = struct{}{}
	}

	assert.Len(t, keys, 6)

	_, err = space.Enumerate(5)
	assert.Error(t, err)

	continuous, err := FromDict(map[string]any{
		"r": map[string]any{"type": "float", "range": []any{0, 1}},
	})
	require.NoError(t, err)

	_, err = continuous.Enumerate(100)
	assert.Error(t, err)
}

func TestKeyIgnoresNumericType(t *testing.T) {
	space, err := FromDict(map[string]any{
		"x": map[string]any{"type": "int", "range": []any{0, 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, space.Key(Proposal{"x": 3}), space.Key(Proposal{"x": int64(3)}))
	assert.NotEqual(t, space.Key(Proposal{"x": 3}), space.Key(Proposal{"x": 4}))
}

func TestSampleStaysInRange(t *testing.T) {
	hp, err := NewFloat(2, 3)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		v := hp.Sample(rng).(float64)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.LessOrEqual(t, v, 3.0)
	}

	_, err = NewFloat(math.Inf(-1), 0)
	assert.True(t, errors.Is(err, ErrInvalidSearchSpace))
}
