package services

import (
	"errors"
	"fmt"

	"airbnb-pricer/dataset"
)

var (
	errNullValue       = errors.New("value is missing")
	errNotBracketed    = errors.New("expected a bracketed list")
	errNoCurrency      = errors.New("expected a leading currency symbol")
	errNotPercent      = errors.New("expected a percentage")
	errNotFinite       = errors.New("value is not a finite number")
	errUnknownDateForm = errors.New("unrecognised date layout")
)

// SchemaError reports a column the pipeline needs but the table does not have.
type SchemaError struct {
	Stage  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing column %q", e.Stage, e.Column)
}

// ParseError reports a value whose text does not have the expected form.
type ParseError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot parse %q: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MappingError reports a categorical value absent from its lookup table.
type MappingError struct {
	Column string
	Row    int
	Value  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("column %q row %d: unknown category %q", e.Column, e.Row, e.Value)
}

// display renders a cell for an error message.
func display(c dataset.Cell) string {
	if c.IsNull() {
		return "<null>"
	}
	return c.String()
}

// requireColumn fetches a column or reports a SchemaError for stage.
func requireColumn(t *dataset.Table, stage, name string) (dataset.Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return dataset.Column{}, &SchemaError{Stage: stage, Column: name}
	}
	return col, nil
}
