package loader

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned when the header row lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Position is a location in a transaction file. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// String formats the position as filename:line:column, omitting empty parts.
func (p Position) String() string {
	switch {
	case p.Filename != "" && p.Column > 0:
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	case p.Filename != "":
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	case p.Column > 0:
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%d", p.Line)
	}
}

// RecordError is reported for a row that cannot be decoded into a
// transaction. The row is skipped; it never aborts a load.
type RecordError struct {
	Pos   Position
	Field string // column name, empty when the row itself is malformed
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: invalid %s %q: %v", e.Pos, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// GetPosition returns the location of the offending field.
func (e *RecordError) GetPosition() Position {
	return e.Pos
}

// PositionedError attaches the position of the row a transaction was decoded
// from to an error raised while executing it.
type PositionedError struct {
	Pos Position
	Err error
}

// WithPosition wraps err with pos. It returns nil if err is nil.
func WithPosition(pos Position, err error) error {
	if err == nil {
		return nil
	}
	return &PositionedError{Pos: pos, Err: err}
}

func (e *PositionedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

// Unwrap returns the underlying error.
func (e *PositionedError) Unwrap() error {
	return e.Err
}

// GetPosition returns the position of the row.
func (e *PositionedError) GetPosition() Position {
	return e.Pos
}
