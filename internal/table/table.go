// Package table provides the in-memory column/row container shared by every
// pipeline stage. Cells are strings; the empty string represents NULL.
package table

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a named-column view over string rows.
type Table struct {
	Columns []string
	Rows    [][]string

	idx map[string]int
}

// New creates an empty table with the given column list.
func New(columns []string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.idx = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.idx[c] = i
	}
}

// Index returns the position of a column.
func (t *Table) Index(col string) (int, bool) {
	if t.idx == nil {
		t.reindex()
	}
	i, ok := t.idx[col]
	return i, ok
}

// Has reports whether the table carries the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.Index(col)
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row, which must match the column count.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return eris.Errorf("table: row has %d fields, want %d", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Get returns the cell at row i for the named column, or "" if the column
// does not exist.
func (t *Table) Get(i int, col string) string {
	j, ok := t.Index(col)
	if !ok || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][j]
}

// Set overwrites the cell at row i for the named column. Unknown columns are
// ignored so cleaners can apply optional fixes unconditionally.
func (t *Table) Set(i int, col, val string) {
	j, ok := t.Index(col)
	if !ok || i < 0 || i >= len(t.Rows) {
		return
	}
	t.Rows[i][j] = val
}

// AddColumn appends a new column filled with the given value. A no-op when
// the column already exists.
func (t *Table) AddColumn(col, fill string) {
	if t.Has(col) {
		return
	}
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], fill)
	}
	t.reindex()
}

// RenameColumns applies old-name → new-name mappings; absent names are skipped.
func (t *Table) RenameColumns(m map[string]string) {
	for i, c := range t.Columns {
		if n, ok := m[c]; ok {
			t.Columns[i] = n
		}
	}
	t.reindex()
}

// Filter returns a new table keeping the rows for which keep returns true.
// Row slices are shared with the receiver.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := New(t.Columns)
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// DropDuplicates removes rows whose composite key was already seen, keeping
// the first occurrence in row order. With no keys the whole row is the key.
func (t *Table) DropDuplicates(keys ...string) *Table {
	seen := make(map[string]bool, len(t.Rows))
	out := New(t.Columns)
	for i, row := range t.Rows {
		var k string
		if len(keys) == 0 {
			k = strings.Join(row, "\x1f")
		} else {
			parts := make([]string, len(keys))
			for j, key := range keys {
				parts[j] = t.Get(i, key)
			}
			k = strings.Join(parts, "\x1f")
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Select projects the table onto the given columns, erroring on any column
// the table does not carry.
func (t *Table) Select(cols ...string) (*Table, error) {
	pos := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.Index(c)
		if !ok {
			return nil, eris.Errorf("table: select: unknown column %q", c)
		}
		pos[i] = j
	}
	out := New(cols)
	for _, row := range t.Rows {
		nr := make([]string, len(cols))
		for i, j := range pos {
			nr[i] = row[j]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := New(t.Columns)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
