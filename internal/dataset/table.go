package dataset

import (
	"strings"
)

// ColumnType is the inferred type of a whole column.
type ColumnType string

const (
	TypeBoolean ColumnType = "boolean"
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeString  ColumnType = "string"
)

// IsNumeric reports whether the column type is integer or float
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Table is an immutable-by-convention tabular dataset: an ordered header
// and rows of tagged cells. Every row has exactly len(Columns) cells, in
// header order. Stages never mutate a Table they received; they return a
// new one.
type Table struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]Value
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnType returns the inferred type of the named column.
// Unknown columns report TypeString.
func (t *Table) ColumnType(name string) ColumnType {
	if i := t.ColumnIndex(name); i >= 0 {
		return t.Types[i]
	}
	return TypeString
}

// Column returns the cells of the column at index idx in row order
func (t *Table) Column(idx int) []Value {
	col := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}
	return col
}

// Clone returns a deep copy of the table. Cleaning stages work on a clone
// so the pre-clean table stays available for before/after reporting.
func (t *Table) Clone() *Table {
	clone := &Table{
		Columns: append([]string(nil), t.Columns...),
		Types:   append([]ColumnType(nil), t.Types...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		clone.Rows[i] = append([]Value(nil), row...)
	}
	return clone
}

// RowKey returns a stable key identifying the full row content.
// Two rows are duplicates exactly when their keys are equal.
func (t *Table) RowKey(idx int) string {
	var sb strings.Builder
	for i, v := range t.Rows[idx] {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(v.key())
	}
	return sb.String()
}

// Equal reports whether two tables have identical headers, types and cells
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, c := range t.Columns {
		if other.Columns[i] != c || other.Types[i] != t.Types[i] {
			return false
		}
	}
	for i, row := range t.Rows {
		for j, v := range row {
			if !v.Equal(other.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}
