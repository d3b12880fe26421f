package tools

import (
	"fmt"
	"math"
	"strings"
)

// ParamType enumerates the JSON types a tool parameter may declare
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Param declares a single tool parameter
type Param struct {
	Type        ParamType
	Description string
	Required    bool
	Default     interface{} // optional params only, filled in when absent
	Enum        []string    // string params only
	Items       *Param      // array params only
}

// Schema declares the full parameter shape of a tool
type Schema struct {
	Params map[string]Param
}

// FieldError describes a single argument validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks arguments against the schema and returns every failure
// found, not just the first. Unknown arguments are ignored so adding a
// parameter to a model prompt never breaks older clients. Absent optional
// parameters with a declared default are filled into args.
func (s Schema) Validate(args map[string]interface{}) []FieldError {
	var fieldErrs []FieldError

	for name, param := range s.Params {
		value, present := args[name]
		if !present || value == nil {
			if param.Required {
				fieldErrs = append(fieldErrs, FieldError{
					Field:   name,
					Message: "required field is missing",
				})
			} else if param.Default != nil {
				args[name] = param.Default
			}
			continue
		}

		fieldErrs = append(fieldErrs, checkValue(name, param, value)...)
	}

	return fieldErrs
}

// checkValue validates a single present value against its declaration.
// Numbers arrive as float64 from JSON decoding, so integer checks accept
// float64 values without a fractional part.
func checkValue(field string, param Param, value interface{}) []FieldError {
	switch param.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return []FieldError{typeMismatch(field, param.Type, value)}
		}
		if len(param.Enum) > 0 && !containsString(param.Enum, str) {
			return []FieldError{{
				Field:   field,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(param.Enum, ", ")),
			}}
		}

	case TypeNumber:
		switch value.(type) {
		case float64, int, int64:
		default:
			return []FieldError{typeMismatch(field, param.Type, value)}
		}

	case TypeInteger:
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != math.Trunc(v) {
				return []FieldError{{
					Field:   field,
					Message: "must be an integer",
				}}
			}
		default:
			return []FieldError{typeMismatch(field, param.Type, value)}
		}

	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return []FieldError{typeMismatch(field, param.Type, value)}
		}

	case TypeArray:
		items, ok := value.([]interface{})
		if !ok {
			return []FieldError{typeMismatch(field, param.Type, value)}
		}
		if param.Items == nil {
			return nil
		}
		var fieldErrs []FieldError
		for i, item := range items {
			fieldErrs = append(fieldErrs,
				checkValue(fmt.Sprintf("%s[%d]", field, i), *param.Items, item)...)
		}
		return fieldErrs

	case TypeObject:
		if _, ok := value.(map[string]interface{}); !ok {
			return []FieldError{typeMismatch(field, param.Type, value)}
		}
	}

	return nil
}

func typeMismatch(field string, want ParamType, got interface{}) FieldError {
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf("expected %s, got %T", want, got),
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// JSONSchema renders the schema as a JSON schema object suitable for
// LLM tool definitions
func (s Schema) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.Params))
	required := make([]string, 0)

	for name, param := range s.Params {
		properties[name] = paramJSONSchema(param)
		if param.Required {
			required = append(required, name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func paramJSONSchema(param Param) map[string]interface{} {
	out := map[string]interface{}{
		"type": string(param.Type),
	}
	if param.Description != "" {
		out["description"] = param.Description
	}
	if param.Default != nil {
		out["default"] = param.Default
	}
	if len(param.Enum) > 0 {
		out["enum"] = param.Enum
	}
	if param.Type == TypeArray && param.Items != nil {
		out["items"] = paramJSONSchema(*param.Items)
	}
	return out
}
