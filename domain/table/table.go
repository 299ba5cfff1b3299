// Package table provides an in-memory columnar table that satisfies the
// linkage table contract (Len, Take, Empty).
package table

import (
	"fmt"

	"github.com/spenczar/quiver/domain/column"
	"github.com/spenczar/quiver/domain/value"
)

// Column describes one column of a table schema
type Column struct {
	Name string
	Type value.Type
}

// Schema is the ordered column list of a table
type Schema struct {
	TableName string
	Columns   []Column
}

// ColumnIndex returns the position of the named column, or -1
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row is a single table row keyed by column name
type Row map[string]value.Value

// NamedColumn pairs a column name with its data, for New
type NamedColumn struct {
	Name   string
	Vector *column.Vector
}

// Col is shorthand for NamedColumn{name, vec}
func Col(name string, vec *column.Vector) NamedColumn {
	return NamedColumn{Name: name, Vector: vec}
}

// Table is an immutable set of equal-length named columns
type Table struct {
	Name    string
	schema  *Schema
	columns []*column.Vector
	rows    int
}

// New assembles a table. Column names must be unique and every column
// must have the same length.
func New(name string, cols ...NamedColumn) (*Table, error) {
	t := &Table{
		Name:    name,
		schema:  &Schema{TableName: name, Columns: make([]Column, 0, len(cols))},
		columns: make([]*column.Vector, 0, len(cols)),
	}

	for i, c := range cols {
		if c.Vector == nil {
			return nil, fmt.Errorf("table %s: column %q has no data", name, c.Name)
		}
		if t.schema.ColumnIndex(c.Name) >= 0 {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c.Name)
		}
		if i == 0 {
			t.rows = c.Vector.Len()
		} else if c.Vector.Len() != t.rows {
			return nil, fmt.Errorf("table %s: column %q has %d rows, want %d",
				name, c.Name, c.Vector.Len(), t.rows)
		}

		t.schema.Columns = append(t.schema.Columns, Column{Name: c.Name, Type: c.Vector.Type()})
		t.columns = append(t.columns, c.Vector)
	}

	return t, nil
}

// MustNew is New for fixtures; it panics on error
func MustNew(name string, cols ...NamedColumn) *Table {
	t, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int { return t.rows }

// Schema returns the table's schema; callers must not modify it
func (t *Table) Schema() *Schema { return t.schema }

// Column returns the named column's data
func (t *Table) Column(name string) (*column.Vector, bool) {
	i := t.schema.ColumnIndex(name)
	if i < 0 {
		return nil, false
	}
	return t.columns[i], true
}

// Take returns a new table with the given rows, in the given order. The
// schema is shared with the source.
func (t *Table) Take(rows []int) *Table {
	out := &Table{
		Name:    t.Name,
		schema:  t.schema,
		columns: make([]*column.Vector, len(t.columns)),
		rows:    len(rows),
	}
	for i, c := range t.columns {
		out.columns[i] = c.Take(rows)
	}
	return out
}

// Empty returns a zero-row table with the same schema
func (t *Table) Empty() *Table {
	return t.Take(nil)
}

// Row materializes row i. Null cells are left out of the map.
func (t *Table) Row(i int) Row {
	row := make(Row, len(t.columns))
	for j, c := range t.columns {
		if c.IsNull(i) {
			continue
		}
		row[t.schema.Columns[j].Name] = c.Value(i)
	}
	return row
}

// Rows materializes every row
func (t *Table) Rows() []Row {
	rows := make([]Row, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

func (t *Table) String() string {
	return fmt.Sprintf("%s(size=%d)", t.Name, t.rows)
}
