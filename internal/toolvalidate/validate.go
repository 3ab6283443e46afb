// Package toolvalidate validates streaming tool-call arguments against a
// tool's declared JSON schema before execution.
package toolvalidate

import (
	"encoding/json"
	"fmt"
)

// Error is the single error variant this package returns. Its message
// always names the offending tool and field.
type Error struct {
	ToolName string
	Field    string
	Message  string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tool %q: field %q: %s", e.ToolName, e.Field, e.Message)
	}
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

// Schema is a minimal JSON-Schema-shaped description of a tool's arguments,
// recognizing string/number/integer/boolean/array/object/null field types.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]Schema  `json:"properties"`
	Required   []string           `json:"required"`
}

// Validate parses argsJSON and checks it against schema, returning the
// parsed value on success. It enforces the exact rule set:
// invalid JSON, a non-object value when type=="object" is declared, a
// missing required field, or a property whose value doesn't match its
// declared type are all rejected; extra fields and properties with no
// declared type are always allowed.
func Validate(toolName, argsJSON string, schema Schema) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(argsJSON), &value); err != nil {
		return nil, &Error{ToolName: toolName, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if schema.Type == "object" {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, &Error{ToolName: toolName, Message: "expected a JSON object"}
		}

		for _, req := range schema.Required {
			if _, present := obj[req]; !present {
				return nil, &Error{ToolName: toolName, Field: req, Message: "missing required field"}
			}
		}

		for name, propSchema := range schema.Properties {
			fieldValue, present := obj[name]
			if !present {
				continue
			}
			if propSchema.Type == "" {
				continue
			}
			if !matchesType(fieldValue, propSchema.Type) {
				return nil, &Error{
					ToolName: toolName,
					Field:    name,
					Message:  fmt.Sprintf("expected type %q", propSchema.Type),
				}
			}
		}
	}

	return value, nil
}

// FromMap converts a JSON-Schema-shaped map (as produced by a Tool's
// Schema() method) into a Schema. Unrecognized shapes degrade gracefully:
// a missing "type" key yields an unconstrained Schema.
func FromMap(m map[string]any) Schema {
	var s Schema
	if t, ok := m["type"].(string); ok {
		s.Type = t
	}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]Schema, len(props))
		for name, raw := range props {
			if propMap, ok := raw.(map[string]any); ok {
				s.Properties[name] = FromMap(propMap)
			}
		}
	}
	return s
}

func matchesType(v any, typ string) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "null":
		return v == nil
	case "number":
		_, ok := v.(float64)
		return ok
	case "integer":
		f, ok := v.(float64)
		if !ok {
			return false
		}
		return f == float64(int64(f))
	default:
		// Unrecognized declared type imposes no constraint.
		return true
	}
}
