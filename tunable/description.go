package tunable

import (
	"math"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FromDict builds a Tunable from a structural description: a mapping from
// hyperparameter name to its definition.
//
// Supported definitions:
//
//	{"type": "int", "range": [0, 10], "default": 5}
//	{"type": "float", "range": [0.001, 1.0]}
//	{"type": "bool", "default": true}
//	{"type": "str", "values": ["gini", "entropy"], "default": "gini"}
//
// "categorical" and "string" are accepted as aliases of "str". Any malformed
// definition fails with ErrInvalidSearchSpace.
func FromDict(description map[string]any) (*Tunable, error) {
	if len(description) == 0 {
		return nil, errors.Wrap(ErrInvalidSearchSpace, "empty description")
	}

	names := make([]string, 0, len(description))
	for name := range description {
		names = append(names, name)
	}

	// Sorted so the first reported error is deterministic.
	sort.Strings(names)

	hyperparameters := make(map[string]Hyperparameter, len(description))

	for _, name := range names {
		definition, ok := asMap(description[name])
		if !ok {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "hyperparameter %q: definition must be a mapping", name)
		}

		hp, err := fromDefinition(definition)
		if err != nil {
			return nil, errors.Wrapf(err, "hyperparameter %q", name)
		}

		hyperparameters[name] = hp
	}

	return New(hyperparameters)
}

// FromYAML parses a YAML (or JSON) description and builds a Tunable from it.
func FromYAML(data []byte) (*Tunable, error) {
	var description map[string]any

	if err := yaml.Unmarshal(data, &description); err != nil {
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "decoding description: %v", err)
	}

	return FromDict(description)
}

func fromDefinition(definition map[string]any) (Hyperparameter, error) {
	kind, _ := definition["type"].(string)
	def, hasDefault := definition["default"]

	switch kind {
	case "int":
		lo, hi, err := parseRange(definition, true)
		if err != nil {
			return nil, err
		}

		hp, err := NewInt(int64(lo), int64(hi))
		if err != nil || !hasDefault {
			return hp, err
		}

		d, ok := toFloat64(def)
		if !ok || d != math.Trunc(d) {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "default %v is not an integer", def)
		}

		return hp.WithDefault(int64(d))
	case "float":
		lo, hi, err := parseRange(definition, false)
		if err != nil {
			return nil, err
		}

		hp, err := NewFloat(lo, hi)
		if err != nil || !hasDefault {
			return hp, err
		}

		d, ok := toFloat64(def)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "default %v is not a number", def)
		}

		return hp.WithDefault(d)
	case "bool":
		if !hasDefault {
			return NewBool(false), nil
		}

		d, ok := def.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidSearchSpace, "default %v is not a bool", def)
		}

		return NewBool(d), nil
	case "str", "string", "categorical":
		values, ok := asSlice(definition["values"])
		if !ok {
			return nil, errors.Wrap(ErrInvalidSearchSpace, `"values" must be a list`)
		}

		hp, err := NewCategorical(values)
		if err != nil || !hasDefault {
			return hp, err
		}

		return hp.WithDefault(def)
	case "":
		return nil, errors.Wrap(ErrInvalidSearchSpace, `missing "type"`)
	default:
		return nil, errors.Wrapf(ErrInvalidSearchSpace, "unknown type %q", kind)
	}
}

func parseRange(definition map[string]any, integer bool) (float64, float64, error) {
	bounds, ok := asSlice(definition["range"])
	if !ok || len(bounds) != 2 {
		return 0, 0, errors.Wrap(ErrInvalidSearchSpace, `"range" must be a list of two numbers`)
	}

	lo, okLo := toFloat64(bounds[0])
	hi, okHi := toFloat64(bounds[1])

	if !okLo || !okHi {
		return 0, 0, errors.Wrapf(ErrInvalidSearchSpace, "range %v must contain numbers", bounds)
	}

	if integer && (lo != math.Trunc(lo) || hi != math.Trunc(hi)) {
		return 0, 0, errors.Wrapf(ErrInvalidSearchSpace, "range %v must contain integers", bounds)
	}

	// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
	if integer && (lo < math.MinInt64 || hi >= math.MaxInt64) {
		return 0, 0, errors.Wrapf(ErrInvalidSearchSpace, "range %v does not fit in int64", bounds)
	}

	return lo, hi, nil
}

// asMap accepts both map[string]any and the map[any]any shape some decoders
// produce for nested mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))

		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}

			out[key] = val
		}

		return out, true
	default:
		return nil, false
	}
}

// asSlice accepts any slice or array, so Go callers may write []int{0, 10} or
// []string{"gini", "entropy"} as well as the []any decoders produce.
func asSlice(v any) ([]any, bool) {
	if values, ok := v.([]any); ok {
		return values, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	return values, true
}
