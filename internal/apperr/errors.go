// Package apperr defines the failure classes a log analysis run can end in.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFileType indicates the selected source is not a .csv file.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrEmptyInput indicates the source has no header row.
	ErrEmptyInput = errors.New("CSV is empty")
	// ErrSchema indicates a required column is missing from the source.
	ErrSchema = errors.New("required column not found")
	// ErrIO indicates an open, read or write failure on the source or an output.
	ErrIO = errors.New("i/o error")
	// ErrRender indicates the report document could not be produced.
	ErrRender = errors.New("report rendering failed")
	// ErrUnexpected covers anything else, including recovered panics.
	ErrUnexpected = errors.New("unexpected failure")
)

// SchemaError names the required columns absent from the source table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("required column(s) not found: %s", strings.Join(quoted, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// InvalidFileTypeError is returned when a source path lacks the .csv extension.
type InvalidFileTypeError struct {
	Path string
	Ext  string
}

func (e *InvalidFileTypeError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("please select a CSV file: %s has no extension", e.Path)
	}
	return fmt.Sprintf("please select a CSV file: %s has extension %q", e.Path, e.Ext)
}

func (e *InvalidFileTypeError) Is(target error) bool {
	return target == ErrInvalidFileType
}

// IO wraps err as an ErrIO failure of op on path.
func IO(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}

// Render wraps err as an ErrRender failure.
func Render(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRender, what, err)
}

// Kind returns the sentinel err belongs to, or ErrUnexpected.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidFileType, ErrEmptyInput, ErrSchema, ErrIO, ErrRender} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUnexpected
}
