package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound indicates the input table does not exist.
	ErrFileNotFound = errors.New("input file not found")
	// ErrSchemaMismatch indicates required columns are missing from the header.
	ErrSchemaMismatch = errors.New("input schema mismatch")
	// ErrEmptyAfterFilter indicates the table loaded but no row passed the filter.
	ErrEmptyAfterFilter = errors.New("no rows left after filtering")
	// ErrNoSubclusterIndex indicates a population label without an s<digits> run.
	ErrNoSubclusterIndex = errors.New("population has no subcluster index")
)

// SchemaError lists the required columns absent from the input header.
type SchemaError struct {
	Path    string
	Missing []string
	Header  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s) %s (found: %s)",
		e.Path, strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// ParseError reports a value in a filtered row that could not be interpreted.
type ParseError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: column %s: cannot parse %q", e.Row, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }
