package nzsl

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/gogpu/nzsl/ast"
)

// Option profiles map shader option names to values, as a TOML table:
//
//	[options]
//	UseInt = true
//	LightCount = 3
//	Exposure = 1.5
//
// LoadOptionsFile turns the table into the hash-keyed map the sanitizer's
// OptionValues expects.

type optionsProfile struct {
	Options map[string]interface{} `toml:"options"`
}

// LoadOptionsFile reads a TOML option profile from disk.
func LoadOptionsFile(path string) (map[uint32]ast.ConstantValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading option profile %s", path)
	}
	values, err := ParseOptions(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing option profile %s", path)
	}
	return values, nil
}

// ParseOptions parses a TOML option profile.
func ParseOptions(data []byte) (map[uint32]ast.ConstantValue, error) {
	var profile optionsProfile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	values := make(map[uint32]ast.ConstantValue, len(profile.Options))
	for name, raw := range profile.Options {
		value, err := optionValue(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "option %s", name)
		}
		values[ast.OptionHash(name)] = value
	}
	return values, nil
}

func optionValue(raw interface{}) (ast.ConstantValue, error) {
	switch v := raw.(type) {
	case bool:
		return ast.BoolValue(v), nil
	case int64:
		return ast.Int32Value(v), nil
	case float64:
		return ast.Float32Value(v), nil
	case string:
		return ast.StringValue(v), nil
	case []interface{}:
		return vectorOptionValue(v)
	default:
		return nil, errors.Errorf("unsupported option value type %T", raw)
	}
}

// vectorOptionValue maps a 2-4 element float array to a constant vector.
func vectorOptionValue(raw []interface{}) (ast.ConstantValue, error) {
	comps := make([]float32, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case int64:
			comps[i] = float32(v)
		case float64:
			comps[i] = float32(v)
		default:
			return nil, errors.Errorf("unsupported vector component type %T", item)
		}
	}
	switch len(comps) {
	case 2:
		return ast.Vector2[float32]{X: comps[0], Y: comps[1]}, nil
	case 3:
		return ast.Vector3[float32]{X: comps[0], Y: comps[1], Z: comps[2]}, nil
	case 4:
		return ast.Vector4[float32]{X: comps[0], Y: comps[1], Z: comps[2], W: comps[3]}, nil
	default:
		return nil, errors.Errorf("vector options take 2 to 4 components, got %d", len(comps))
	}
}
