// Package redline provides custom error types for the load-transform-save
// cycle. Local recovery is preferred everywhere except the size ceiling.
package redline

import (
	"fmt"

	"github.com/jslattery/go-redline/pkg/redline/wml"
)

// PackageError represents an error opening or saving a whole package.
type PackageError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *PackageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("package error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	}
	return fmt.Sprintf("package error during %s: %v", e.Operation, e.Cause)
}

func (e *PackageError) Unwrap() error {
	return e.Cause
}

// NewPackageError creates a new package error
func NewPackageError(operation, path string, cause error) error {
	return &PackageError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// PartError represents an error in one package part.
type PartError struct {
	Part  string
	Op    string
	Cause error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("part error in '%s' during %s: %v", e.Part, e.Op, e.Cause)
}

func (e *PartError) Unwrap() error {
	return e.Cause
}

// NewPartError creates a new part error
func NewPartError(part, op string, cause error) error {
	return &PartError{Part: part, Op: op, Cause: cause}
}

// SizeLimitError wraps the wml size ceiling violation with the part name.
// It is the only fatal condition a transformation pipeline surfaces; every
// other malformation degrades to diagnostics.
type SizeLimitError struct {
	Part  string
	Size  int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("part '%s' size %d exceeds limit %d", e.Part, e.Size, e.Limit)
}

// newSizeLimitError lifts a wml.SizeLimitError into the package taxonomy.
func newSizeLimitError(part string, err *wml.SizeLimitError) error {
	return &SizeLimitError{Part: part, Size: err.Size, Limit: err.Limit}
}

// IsPackageError checks if an error is a package error
func IsPackageError(err error) bool {
	_, ok := err.(*PackageError)
	return ok
}

// IsPartError checks if an error is a part error
func IsPartError(err error) bool {
	_, ok := err.(*PartError)
	return ok
}

// IsSizeLimitError checks if an error is a size limit error
func IsSizeLimitError(err error) bool {
	if _, ok := err.(*SizeLimitError); ok {
		return true
	}
	return wml.IsSizeLimitError(err)
}
