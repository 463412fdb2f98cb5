package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type ParamType string

const (
	TypeString     ParamType = "string"
	TypeInteger    ParamType = "integer"
	TypeBoolean    ParamType = "boolean"
	TypeStringList ParamType = "array"
)

// FormatDate marks a string parameter as a YYYYMMDD calendar date.
const FormatDate = "date"

// ParamSpec declares one named, typed tool parameter.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string    // allowed values; for arrays, allowed item values
	Default     interface{} // applied when the argument is absent
	Format      string
}

// ValidatedArgs holds coerced arguments with defaults applied. Values are
// plain JSON-compatible types keyed by parameter name.
type ValidatedArgs map[string]interface{}

func (a ValidatedArgs) String(name string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return ""
}

func (a ValidatedArgs) Int(name string) int {
	switch v := a[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (a ValidatedArgs) Bool(name string) bool {
	if v, ok := a[name].(bool); ok {
		return v
	}
	return false
}

func (a ValidatedArgs) StringList(name string) []string {
	switch v := a[name].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Validate checks args against the tool's parameter specs: required
// parameters present, no unknown parameters, values convertible to their
// declared types, enum and date constraints honored. It reports every
// violation, not just the first. Pure function of the specs and input.
func Validate(tool Tool, args map[string]interface{}) (ValidatedArgs, *ValidationError) {
	specs := tool.Params()
	known := make(map[string]ParamSpec, len(specs))
	for _, spec := range specs {
		known[spec.Name] = spec
	}

	var violations []string
	out := make(ValidatedArgs, len(specs))

	for name := range args {
		if _, ok := known[name]; !ok {
			violations = append(violations, fmt.Sprintf("unknown parameter %q", name))
		}
	}

	for _, spec := range specs {
		raw, present := args[spec.Name]
		if !present || raw == nil {
			if spec.Required {
				violations = append(violations, fmt.Sprintf("missing required parameter %q", spec.Name))
			} else if spec.Default != nil {
				out[spec.Name] = spec.Default
			}
			continue
		}

		value, errs := coerce(spec, raw)
		if len(errs) > 0 {
			violations = append(violations, errs...)
			continue
		}
		out[spec.Name] = value
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Tool: tool.Name(), Violations: violations}
	}
	return out, nil
}

func coerce(spec ParamSpec, raw interface{}) (interface{}, []string) {
	switch spec.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, []string{fmt.Sprintf("parameter %q must be a string", spec.Name)}
		}
		var errs []string
		if len(spec.Enum) > 0 && !inEnum(spec.Enum, s) {
			errs = append(errs, fmt.Sprintf("parameter %q must be one of %v, got %q", spec.Name, spec.Enum, s))
		}
		if spec.Format == FormatDate && !validDate(s) {
			errs = append(errs, fmt.Sprintf("parameter %q must be a YYYYMMDD date, got %q", spec.Name, s))
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return s, nil

	case TypeInteger:
		switch v := raw.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, []string{fmt.Sprintf("parameter %q must be an integer, got %v", spec.Name, v)}
			}
			return int(v), nil
		case int:
			return v, nil
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return nil, []string{fmt.Sprintf("parameter %q must be an integer, got %s", spec.Name, v)}
			}
			return int(n), nil
		default:
			return nil, []string{fmt.Sprintf("parameter %q must be an integer", spec.Name)}
		}

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, []string{fmt.Sprintf("parameter %q must be a boolean", spec.Name)}
		}
		return b, nil

	case TypeStringList:
		items, ok := raw.([]interface{})
		if !ok {
			if typed, isTyped := raw.([]string); isTyped {
				items = make([]interface{}, len(typed))
				for i, s := range typed {
					items[i] = s
				}
			} else {
				return nil, []string{fmt.Sprintf("parameter %q must be an array of strings", spec.Name)}
			}
		}
		var errs []string
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, isString := item.(string)
			if !isString {
				errs = append(errs, fmt.Sprintf("parameter %q item %d must be a string", spec.Name, i))
				continue
			}
			if len(spec.Enum) > 0 && !inEnum(spec.Enum, s) {
				errs = append(errs, fmt.Sprintf("parameter %q item %q must be one of %v", spec.Name, s, spec.Enum))
				continue
			}
			out = append(out, s)
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil

	default:
		return nil, []string{fmt.Sprintf("parameter %q has unsupported type %q", spec.Name, spec.Type)}
	}
}

func inEnum(enum []string, value string) bool {
	for _, e := range enum {
		if e == value {
			return true
		}
	}
	return false
}

func validDate(s string) bool {
	_, err := time.Parse("20060102", s)
	return err == nil
}

// Schema renders a tool's parameter specs as a JSON-schema object for
// tools/list.
func Schema(tool Tool) map[string]interface{} {
	properties := make(map[string]interface{})
	required := make([]string, 0)

	for _, spec := range tool.Params() {
		prop := map[string]interface{}{
			"type":        string(spec.Type),
			"description": spec.Description,
		}
		if spec.Type == TypeStringList {
			item := map[string]interface{}{"type": "string"}
			if len(spec.Enum) > 0 {
				item["enum"] = spec.Enum
			}
			prop["items"] = item
		} else if len(spec.Enum) > 0 {
			prop["enum"] = spec.Enum
		}
		if spec.Default != nil {
			prop["default"] = spec.Default
		}
		properties[spec.Name] = prop

		if spec.Required {
			required = append(required, spec.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
