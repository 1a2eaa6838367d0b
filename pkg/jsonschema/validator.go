// Package jsonschema validates JSON documents against JSON Schema documents,
// either given inline or looked up by name in a schema directory.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate reports whether jsonStr conforms to schemaStr.
// A broken schema or unparseable document is an error, not an invalid result.
func Validate(jsonStr, schemaStr string) (bool, error) {
	schema, err := compileString(schemaStr)
	if err != nil {
		return false, err
	}

	doc, err := decode(jsonStr)
	if err != nil {
		return false, err
	}

	return schema.Validate(doc) == nil, nil
}

// ValidateWithErrors is Validate with every leaf validation failure listed.
func ValidateWithErrors(jsonStr, schemaStr string) (bool, ValidationErrors) {
	schema, err := compileString(schemaStr)
	if err != nil {
		return false, ValidationErrors{err}
	}
	return validateCompiled(schema, jsonStr)
}

func compileString(schemaStr string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

func decode(jsonStr string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

func validateCompiled(schema *jsonschema.Schema, jsonStr string) (bool, ValidationErrors) {
	doc, err := decode(jsonStr)
	if err != nil {
		return false, ValidationErrors{err}
	}

	err = schema.Validate(doc)
	if err == nil {
		return true, nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return false, leafErrors(validationErr)
	}
	return false, ValidationErrors{err}
}

// leafErrors flattens the cause tree, keeping only the most specific failures.
func leafErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message)}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, leafErrors(cause)...)
	}
	return errs
}
