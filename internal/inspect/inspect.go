// Package inspect holds read-only checks and extractions over a completed
// response. Nothing here caches; every call evaluates the response afresh.
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/pkg/jsonpath"
)

// SchemaValidator validates a document against a named schema.
// *jsonschema.Registry satisfies it.
type SchemaValidator interface {
	Validate(name, body string) error
}

// VerifyStatusCode reports whether the response carries status code.
func VerifyStatusCode(resp *http.Response, code int) bool {
	return resp.StatusCode == code
}

// VerifyHeader reports whether header equals expected exactly.
func VerifyHeader(resp *http.Response, header, expected string) bool {
	return resp.HasHeader(header) && resp.GetHeader(header) == expected
}

// VerifyContains reports whether the body contains substr.
func VerifyContains(resp *http.Response, substr string) bool {
	return strings.Contains(resp.GetBodyAsString(), substr)
}

// VerifyResponseTime reports whether the response arrived within max, inclusive.
func VerifyResponseTime(resp *http.Response, max time.Duration) bool {
	return resp.ResponseTime <= max
}

// VerifyField extracts path from the body and compares it with expected as
// strings, so 30 and "30" are equal.
func VerifyField(resp *http.Response, path, expected string) (bool, error) {
	actual, err := ExtractValue(resp, path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}

// ExtractValue returns the value at path in its string form.
func ExtractValue(resp *http.Response, path string) (string, error) {
	value, err := jsonpath.Extract(resp.GetBodyAsString(), path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	return value, nil
}

// ExtractValues returns every value matched by path.
func ExtractValues(resp *http.Response, path string) ([]string, error) {
	values, err := jsonpath.ExtractList(resp.GetBodyAsString(), path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	return values, nil
}

// ValidateSchema fails when the body does not conform to the named schema.
func ValidateSchema(resp *http.Response, validator SchemaValidator, name string) error {
	if err := validator.Validate(name, resp.GetBodyAsString()); err != nil {
		return fmt.Errorf("response does not match schema %s: %w", name, err)
	}
	return nil
}
