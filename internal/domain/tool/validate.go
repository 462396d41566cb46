package tool

import (
	"math"

	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// ValidateArgs checks an argument map against a tool's JSON Schema and
// returns a copy with declared defaults applied. It is a pure function:
// the same input always yields the same outcome and nothing is mutated.
//
// Checks, in order per parameter: presence of required parameters
// (reason "missing"), declared type (reason "type"), numeric bounds via
// the schema's minimum/maximum keywords (reason "range"). Runs before
// any network call so an invalid invocation never reaches the ledger.
func ValidateArgs(schema map[string]interface{}, args map[string]interface{}) (map[string]interface{}, error) {
	properties, _ := schema["properties"].(map[string]interface{})

	for _, name := range requiredList(schema) {
		if _, ok := args[name]; !ok {
			return nil, errors.NewValidationError(name, "missing")
		}
	}

	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}

	for name, raw := range properties {
		prop, _ := raw.(map[string]interface{})
		if prop == nil {
			continue
		}

		value, present := out[name]
		if !present {
			if def, ok := prop["default"]; ok {
				out[name] = def
			}
			continue
		}

		declared, _ := prop["type"].(string)
		if !typeMatches(declared, value) {
			return nil, errors.NewValidationError(name, "type")
		}

		if num, ok := asFloat(value); ok {
			if min, ok := asFloat(prop["minimum"]); ok && num < min {
				return nil, errors.NewValidationError(name, "range")
			}
			if max, ok := asFloat(prop["maximum"]); ok && num > max {
				return nil, errors.NewValidationError(name, "range")
			}
		}
	}

	return out, nil
}

func requiredList(schema map[string]interface{}) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []interface{}:
		names := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

// typeMatches checks a decoded JSON value against a declared schema type.
// JSON numbers decode to float64, so "integer" additionally requires an
// integral value.
func typeMatches(declared string, value interface{}) bool {
	switch declared {
	case "", "object":
		return true
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := asFloat(value)
		return ok
	case "integer":
		num, ok := asFloat(value)
		return ok && num == math.Trunc(num)
	}
	return true
}

func asFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
