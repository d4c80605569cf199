// Package util holds the parameter schemas shared by function tools and the
// transfer / completion directive tools, and the instruction renderer.
package util

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// JSON schema type names.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// ArgumentError reports the first tool argument that does not satisfy the
// tool's parameter schema.
type ArgumentError struct {
	Field  string `json:"field"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Field, e.Reason)
}

// Property describes one parameter of an object schema. A non-nil Enum
// restricts the value to the listed strings; an empty non-nil Enum admits
// nothing.
type Property struct {
	Type        string
	Description string
	Enum        []string
}

func (p Property) schema() map[string]any {
	s := map[string]any{"type": p.Type}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if p.Enum != nil {
		enum := make([]any, len(p.Enum))
		for i, v := range p.Enum {
			enum[i] = v
		}
		s["enum"] = enum
	}
	return s
}

// ObjectSchema builds the parameter schema of a tool taking props.
func ObjectSchema(props map[string]Property, required ...string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, p := range props {
		properties[name] = p.schema()
	}

	schema := map[string]any{
		"type":       TypeObject,
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// SchemaFromStruct derives an object schema from the exported fields of a
// struct. Field names follow the json tag, the description tag documents the
// field and an enum tag ("a|b|c") restricts string values. Fields without
// omitempty that are not pointers are required.
func SchemaFromStruct(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ObjectSchema(nil)
	}

	props := make(map[string]Property, t.NumField())
	var required []string

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		p := Property{Type: jsonType(f.Type), Description: f.Tag.Get("description")}
		if enum := f.Tag.Get("enum"); enum != "" {
			p.Enum = strings.Split(enum, "|")
		}
		props[name] = p

		if f.Type.Kind() != reflect.Pointer && !slices.Contains(strings.Split(opts, ","), "omitempty") {
			required = append(required, name)
		}
	}

	return ObjectSchema(props, required...)
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return jsonType(t.Elem())
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeObject
	default:
		return TypeString
	}
}

// ValidateParameters checks decoded tool arguments against schema: required
// fields are present and non-null, values match their declared type and
// enum-restricted values are among the allowed ones. Arguments the schema
// does not declare are accepted.
func ValidateParameters(args map[string]any, schema map[string]any) error {
	for _, name := range stringList(schema["required"]) {
		if v, ok := args[name]; !ok || v == nil {
			return &ArgumentError{Field: name, Reason: "required"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range args {
		prop, _ := properties[name].(map[string]any)
		if prop == nil || value == nil {
			continue
		}

		typ, _ := prop["type"].(string)
		if !hasType(value, typ) {
			return &ArgumentError{Field: name, Value: value, Reason: fmt.Sprintf("want %s, got %T", typ, value)}
		}

		if raw, ok := prop["enum"]; ok {
			allowed := stringList(raw)
			if s, _ := value.(string); !slices.Contains(allowed, s) {
				return &ArgumentError{Field: name, Value: value, Reason: fmt.Sprintf("must be one of [%s]", strings.Join(allowed, ", "))}
			}
		}
	}

	return nil
}

// stringList accepts []string as built in Go and []any as decoded from JSON
// or YAML.
func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func hasType(v any, typ string) bool {
	switch typ {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeInteger:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			// encoding/json decodes every number as float64
			return n == float64(int64(n))
		}
		return false
	case TypeNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	default:
		return true
	}
}
