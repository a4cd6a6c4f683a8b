// Package dataset provides the tabular observation data consumed by the
// regression workbench. A Table is an ordered collection of rows with named
// numeric columns and an optional string label column.
package dataset

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoColumns          = errors.New("no columns")
	ErrColumnLenMismatch  = errors.New("columns have different lengths")
	ErrDuplicateColumn    = errors.New("duplicate column name")
	ErrUnknownColumn      = errors.New("unknown column name")
	ErrNotCountData       = errors.New("column is not non-negative integer count data")
	ErrColumnNameMismatch = errors.New("number of column names does not match number of columns")
)

// Table stores named numeric columns of equal length along with optional row
// labels. Tables are immutable after construction; accessors return copies.
type Table struct {
	names  []string
	cols   [][]float64
	labels []string
}

// New creates a Table from column names and their values. All columns must
// have the same length and names must be unique.
func New(names []string, cols [][]float64) (*Table, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	if len(names) != len(cols) {
		return nil, errors.Wrapf(ErrColumnNameMismatch, "%d names for %d columns", len(names), len(cols))
	}

	n := len(cols[0])
	if n == 0 {
		return nil, errors.Wrap(ErrNoColumns, "columns have no rows")
	}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if _, exists := seen[name]; exists {
			return nil, errors.Wrapf(ErrDuplicateColumn, "%q", name)
		}
		seen[name] = struct{}{}
		if len(cols[i]) != n {
			return nil, errors.Wrapf(ErrColumnLenMismatch, "column %q has %d rows, expected %d", name, len(cols[i]), n)
		}
	}

	t := &Table{
		names: make([]string, len(names)),
		cols:  make([][]float64, len(cols)),
	}
	copy(t.names, names)
	for i, col := range cols {
		t.cols[i] = make([]float64, n)
		copy(t.cols[i], col)
	}
	return t, nil
}

// WithLabels returns a copy of the table carrying row labels, e.g. country
// names. The label slice must match the number of rows.
func (t *Table) WithLabels(labels []string) (*Table, error) {
	if len(labels) != t.NumRows() {
		return nil, errors.Wrapf(ErrColumnLenMismatch, "%d labels for %d rows", len(labels), t.NumRows())
	}
	nt := t.copy()
	nt.labels = make([]string, len(labels))
	copy(nt.labels, labels)
	return nt, nil
}

func (t *Table) copy() *Table {
	nt := &Table{
		names: make([]string, len(t.names)),
		cols:  make([][]float64, len(t.cols)),
	}
	copy(nt.names, t.names)
	for i, col := range t.cols {
		nt.cols[i] = make([]float64, len(col))
		copy(nt.cols[i], col)
	}
	if t.labels != nil {
		nt.labels = make([]string, len(t.labels))
		copy(nt.labels, t.labels)
	}
	return nt
}

// Names returns the column names in their original order.
func (t *Table) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// Labels returns the row labels or nil if none were set.
func (t *Table) Labels() []string {
	if t.labels == nil {
		return nil
	}
	labels := make([]string, len(t.labels))
	copy(labels, t.labels)
	return labels
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns a copy of the named column values.
func (t *Table) Column(name string) ([]float64, error) {
	for i, n := range t.names {
		if n == name {
			col := make([]float64, len(t.cols[i]))
			copy(col, t.cols[i])
			return col, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownColumn, "%q", name)
}

// Matrix assembles a design matrix from the requested columns in the given
// order, one row per observation.
func (t *Table) Matrix(fields []string) (*mat.Dense, error) {
	if len(fields) == 0 {
		return nil, ErrNoColumns
	}
	m := t.NumRows()
	x := mat.NewDense(m, len(fields), nil)
	for j, field := range fields {
		col, err := t.Column(field)
		if err != nil {
			return nil, err
		}
		x.SetCol(j, col)
	}
	return x, nil
}

// CheckCounts verifies that the named column holds valid count data, i.e.
// non-negative integers. Count-family responses must pass this check before
// any solver is invoked.
func (t *Table) CheckCounts(name string) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	for i, v := range col {
		if v < 0 {
			return errors.Wrapf(ErrNotCountData, "column %q has negative value %g at row %d", name, v, i)
		}
		if v != math.Trunc(v) || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrNotCountData, "column %q has non-integer value %g at row %d", name, v, i)
		}
	}
	return nil
}
