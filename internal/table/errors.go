package table

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports a reference to a column the table does not have.
// It signals a programming or configuration mistake, not a data problem.
type SchemaError struct {
	Column    string
	Available []string
}

func (e *SchemaError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown column %q", e.Column)
	}
	return fmt.Sprintf("unknown column %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// ErrRowOutOfRange is returned by Row for an index outside the table.
var ErrRowOutOfRange = errors.New("row index out of range")
