package geo

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Match them with errors.Is.
var (
	// ErrFormat is returned when a document is not valid JSON or lacks a features array.
	ErrFormat = errors.New("malformed feature collection")

	// ErrMissingBoundary is returned when the boundary document has no usable first feature.
	ErrMissingBoundary = errors.New("missing boundary feature")

	// ErrInvalidGeometry is returned when the boundary geometry is not a valid Polygon.
	ErrInvalidGeometry = errors.New("invalid boundary geometry")
)

// Error ties a fatal error kind to the file it was raised for.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
