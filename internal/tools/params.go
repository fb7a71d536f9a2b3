package tools

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Kind is the wire type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindStrings:
		return "array of strings"
	default:
		return "unknown"
	}
}

// Field declares one parameter of an operation.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any      // applied when absent; nil means no default
	Path     bool     // value is resolved through the sandbox before dispatch
	Enum     []string // when non-empty, string value must be one of these
	Doc      string   // one-line description for the help catalog
}

// ParamSpec declares the full parameter surface of an operation.
// Validation is strict: unknown keys are rejected rather than ignored, so
// a misspelled optional parameter fails loudly instead of silently doing
// the default thing.
type ParamSpec struct {
	Fields []Field
}

// Validate checks args against the spec and returns a normalized copy:
// types coerced, defaults applied, enums enforced. The input map is not
// modified. Returned errors are *OpError with MISSING_PARAMETER or
// INVALID_PARAMETER codes.
func (s ParamSpec) Validate(args map[string]any) (map[string]any, error) {
	known := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		known[f.Name] = true
	}
	for key := range args {
		if !known[key] {
			return nil, InvalidParam(key, "unknown parameter")
		}
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		raw, present := args[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, MissingParam(f.Name)
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		val, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = val
	}
	return out, nil
}

// coerce converts a decoded JSON value to the field's Go type. JSON
// numbers arrive as float64; integral values are accepted for KindInt.
func coerce(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return nil, InvalidParam(f.Name, fmt.Sprintf("expected %s, got %T", f.Kind, raw))
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, str) {
			return nil, InvalidParam(f.Name,
				fmt.Sprintf("must be one of: %s", strings.Join(f.Enum, ", ")))
		}
		return str, nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, InvalidParam(f.Name, fmt.Sprintf("expected %s, got %T", f.Kind, raw))
		}
		return b, nil

	case KindInt:
		switch n := raw.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, InvalidParam(f.Name, "expected an integer, got a fraction")
			}
			return int(n), nil
		case int:
			return n, nil
		default:
			return nil, InvalidParam(f.Name, fmt.Sprintf("expected %s, got %T", f.Kind, raw))
		}

	case KindStrings:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			strs := make([]string, len(v))
			for i, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, InvalidParam(f.Name,
						fmt.Sprintf("element %d: expected string, got %T", i, item))
				}
				strs[i] = str
			}
			return strs, nil
		default:
			return nil, InvalidParam(f.Name, fmt.Sprintf("expected %s, got %T", f.Kind, raw))
		}

	default:
		return nil, Errf(CodeInternal, "unhandled parameter kind %d", f.Kind)
	}
}

// Typed accessors for validated argument maps. Validation guarantees the
// stored type, so a failed assertion yields the zero value.

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}

func intArg(args map[string]any, name string) int {
	v, _ := args[name].(int)
	return v
}

func stringsArg(args map[string]any, name string) []string {
	v, _ := args[name].([]string)
	return v
}
