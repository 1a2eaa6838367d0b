package config

import (
	"fmt"
	"strings"
)

var validFormats = []string{"pretty", "progress", "cucumber", "junit", "events"}

// ValidateSettings validates the settings
func ValidateSettings(settings *Settings) []ValidationError {
	var errors []ValidationError

	if settings.APIPaths == "" {
		errors = append(errors, ValidationError{
			Path:    "apiPaths",
			Message: "apiPaths table is required",
		})
	}

	if settings.Queries == "" {
		errors = append(errors, ValidationError{
			Path:    "queries",
			Message: "queries table is required",
		})
	}

	if settings.Format != "" && !stringInSlice(settings.Format, validFormats) {
		errors = append(errors, ValidationError{
			Path:    "format",
			Message: fmt.Sprintf("invalid format %q, must be one of: %s", settings.Format, strings.Join(validFormats, ", ")),
		})
	}

	if settings.Timeout != "" {
		if _, err := ParseDurationString(settings.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: fmt.Sprintf("invalid duration format '%s': %v", settings.Timeout, err),
			})
		}
	}

	for i, feature := range settings.Features {
		if strings.TrimSpace(feature) == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("features[%d]", i),
				Message: "feature path cannot be empty",
			})
		}
	}

	return errors
}

// stringInSlice checks if a string is in a slice
func stringInSlice(str string, slice []string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
