package generation

import (
	"encoding/json"
	"slices"
)

// Schema types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Schema is the subset of JSON Schema that every provider can express.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
}

// String renders the schema as indented JSON for prompt composition.
func (s *Schema) String() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Object builds an object schema. Every property is required unless listed
// in optional.
func Object(description string, properties map[string]*Schema, optional ...string) *Schema {
	required := make([]string, 0, len(properties))
	for name := range properties {
		if !slices.Contains(optional, name) {
			required = append(required, name)
		}
	}
	slices.Sort(required)

	return &Schema{
		Type:        TypeObject,
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// Array builds an array schema of items.
func Array(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// String builds a string schema, optionally restricted to enum values.
func String(description string, enum ...string) *Schema {
	return &Schema{Type: TypeString, Description: description, Enum: enum}
}
