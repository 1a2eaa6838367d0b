package config

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every lookup failure, including values of the wrong shape.
var ErrNotFound = errors.New("name not found")

// NotFoundError is returned when a name is absent from every group of a table.
type NotFoundError struct {
	Name   string
	Source string
}

func (e *NotFoundError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%q not found", e.Name)
	}
	return fmt.Sprintf("%q not found in %s", e.Name, e.Source)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ShapeError is returned when a name exists but holds a scalar where a list
// was expected, or the other way around.
type ShapeError struct {
	Name   string
	Source string
	Want   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%q in %s is not a %s", e.Name, e.Source, e.Want)
}

// Is reports ErrNotFound: the name was not found in the expected shape.
func (e *ShapeError) Is(target error) bool { return target == ErrNotFound }

// DuplicateKeyError reports the first entry name found twice in a table.
type DuplicateKeyError struct {
	Name   string
	Group  string
	Source string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate element name found: %s (group %s in %s)", e.Name, e.Group, e.Source)
}

// ValidationError represents a settings validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
