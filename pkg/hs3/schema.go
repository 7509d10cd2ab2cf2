package hs3

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

//go:embed schema.json
var schemaJSON []byte

const (
	schemaTypeObject = "object"
	schemaTypeArray  = "array"
	schemaTypeString = "string"
	schemaTypeNumber = "number"
)

type jsonSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
	MinLength            *int                   `json:"minLength,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
}

var (
	schemaOnce   sync.Once
	schemaParsed *jsonSchema
	schemaErr    error
)

func documentSchema() (*jsonSchema, error) {
	schemaOnce.Do(func() {
		schemaParsed, schemaErr = parseSchema(schemaJSON)
	})
	return schemaParsed, schemaErr
}

func parseSchema(data []byte) (*jsonSchema, error) {
	var schema jsonSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := validateSchema(&schema, "$"); err != nil {
		return nil, err
	}
	return &schema, nil
}

// ValidateJSON checks a raw document against the embedded schema.
func ValidateJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	schema, err := documentSchema()
	if err != nil {
		return err
	}
	return validateValue(value, schema, "$")
}

func validateSchema(schema *jsonSchema, path string) error {
	if schema == nil {
		return fmt.Errorf("%s: schema is nil", path)
	}
	if schema.MinItems != nil && *schema.MinItems < 0 {
		return fmt.Errorf("%s: minItems must be >= 0", path)
	}
	if schema.MinLength != nil && *schema.MinLength < 0 {
		return fmt.Errorf("%s: minLength must be >= 0", path)
	}
	if len(schema.Enum) > 0 && schema.Type != schemaTypeString {
		return fmt.Errorf("%s: enum only supported for %q type", path, schemaTypeString)
	}
	if schema.MinLength != nil && schema.Type != schemaTypeString {
		return fmt.Errorf("%s: minLength only supported for string type", path)
	}
	if schema.MinItems != nil && schema.Type != schemaTypeArray {
		return fmt.Errorf("%s: minItems only supported for array type", path)
	}
	switch schema.Type {
	case schemaTypeObject:
		if schema.Properties == nil {
			return fmt.Errorf("%s: object schema missing properties", path)
		}
		for _, req := range schema.Required {
			if _, ok := schema.Properties[req]; !ok {
				return fmt.Errorf("%s: required property %q not defined", path, req)
			}
		}
		for key, prop := range schema.Properties {
			if err := validateSchema(prop, path+"."+key); err != nil {
				return err
			}
		}
	case schemaTypeArray:
		if schema.Items == nil {
			return fmt.Errorf("%s: array schema missing items", path)
		}
		if err := validateSchema(schema.Items, path+"[]"); err != nil {
			return err
		}
	case schemaTypeString, schemaTypeNumber:
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, schema.Type)
	}
	return nil
}

func validateValue(value any, schema *jsonSchema, path string) error {
	if schema == nil {
		return fmt.Errorf("%s: schema is nil", path)
	}
	switch schema.Type {
	case schemaTypeObject:
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		for _, req := range schema.Required {
			if _, ok := m[req]; !ok {
				return fmt.Errorf("%s: missing required property %q", path, req)
			}
		}
		for key, val := range m {
			propSchema, ok := schema.Properties[key]
			if !ok {
				if schema.AdditionalProperties != nil && !*schema.AdditionalProperties {
					return fmt.Errorf("%s: unknown property %q", path, key)
				}
				continue
			}
			if err := validateValue(val, propSchema, path+"."+key); err != nil {
				return err
			}
		}
	case schemaTypeArray:
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		if schema.MinItems != nil && len(list) < *schema.MinItems {
			return fmt.Errorf("%s: expected at least %d items", path, *schema.MinItems)
		}
		for i, item := range list {
			if err := validateValue(item, schema.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case schemaTypeString:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string", path)
		}
		if schema.MinLength != nil && len(str) < *schema.MinLength {
			return fmt.Errorf("%s: expected min length %d", path, *schema.MinLength)
		}
		if len(schema.Enum) > 0 && !stringInSlice(str, schema.Enum) {
			return fmt.Errorf("%s: value %q not in enum", path, str)
		}
	case schemaTypeNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("%s: expected number", path)
		}
	default:
		return errors.New(path + ": unsupported schema type " + schema.Type)
	}
	return nil
}

func stringInSlice(value string, values []string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
