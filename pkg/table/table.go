// Package table provides the ordered-rows-with-named-columns container used
// by every stage of enrollsync. Cells are strings; typed interpretation is
// the job of the normalize and clearinghouse packages.
package table

import (
	"fmt"
	"slices"

	"github.com/agentstation/enrollsync/pkg/errors"
)

// Table is a header plus ordered rows. Every row has exactly len(header)
// cells: shorter rows are padded with empty strings, longer rows truncated.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// New creates an empty table with the given header.
func New(header ...string) *Table {
	t := &Table{
		header: slices.Clone(header),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t
}

// FromRows creates a table from a header and rows. Rows are copied.
func FromRows(header []string, rows [][]string) *Table {
	t := New(header...)
	for _, row := range rows {
		t.Append(row...)
	}
	return t
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return slices.Clone(t.header)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows. Callers must not modify them.
func (t *Table) Rows() [][]string {
	return t.rows
}

// Row returns row i.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Append adds a row, fitting it to the header width.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.header))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Column returns the position of a named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumns reports whether every name is a column.
func (t *Table) HasColumns(names ...string) bool {
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return false
		}
	}
	return true
}

// Get returns the cell of row i in the named column, or "" if the column is absent.
func (t *Table) Get(i int, name string) string {
	c, ok := t.index[name]
	if !ok {
		return ""
	}
	return t.rows[i][c]
}

// Set replaces the cell of row i in the named column.
func (t *Table) Set(i int, name, value string) error {
	c, ok := t.index[name]
	if !ok {
		return errors.NewNotFoundError("column", name)
	}
	t.rows[i][c] = value
	return nil
}

// Values returns the named column in row order.
func (t *Table) Values(name string) []string {
	c, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// Project returns a new table holding only the named columns, in the
// requested order. Row order is preserved.
func (t *Table) Project(names ...string) (*Table, error) {
	return t.ProjectAs(names, names)
}

// ProjectAs is Project with the projected columns renamed to as.
func (t *Table) ProjectAs(names, as []string) (*Table, error) {
	if len(names) != len(as) {
		return nil, errors.NewValidationError("as", as, fmt.Sprintf("expected %d names, got %d", len(names), len(as)))
	}
	cols := make([]int, len(names))
	for i, name := range names {
		c, ok := t.index[name]
		if !ok {
			return nil, errors.NewNotFoundError("column", name)
		}
		cols[i] = c
	}
	out := New(as...)
	out.rows = make([][]string, len(t.rows))
	for r, row := range t.rows {
		projected := make([]string, len(cols))
		for i, c := range cols {
			projected[i] = row[c]
		}
		out.rows[r] = projected
	}
	return out, nil
}

// GroupBy returns the distinct values of a column in first-seen order and
// the row indexes holding each value.
func (t *Table) GroupBy(name string) ([]string, map[string][]int, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, nil, errors.NewNotFoundError("column", name)
	}
	var keys []string
	groups := make(map[string][]int)
	for i, row := range t.rows {
		k := row[c]
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	return keys, groups, nil
}

// Index maps each value of the key column to the value column of the
// last row carrying that key.
func (t *Table) Index(key, value string) (map[string]string, error) {
	kc, ok := t.index[key]
	if !ok {
		return nil, errors.NewNotFoundError("column", key)
	}
	vc, ok := t.index[value]
	if !ok {
		return nil, errors.NewNotFoundError("column", value)
	}
	out := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		out[row[kc]] = row[vc]
	}
	return out, nil
}

// IndexList maps each value of the key column to the listed columns of the
// last row carrying that key.
func (t *Table) IndexList(key string, values ...string) (map[string][]string, error) {
	kc, ok := t.index[key]
	if !ok {
		return nil, errors.NewNotFoundError("column", key)
	}
	cols := make([]int, len(values))
	for i, v := range values {
		c, ok := t.index[v]
		if !ok {
			return nil, errors.NewNotFoundError("column", v)
		}
		cols[i] = c
	}
	out := make(map[string][]string, len(t.rows))
	for _, row := range t.rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = row[c]
		}
		out[row[kc]] = vals
	}
	return out, nil
}
