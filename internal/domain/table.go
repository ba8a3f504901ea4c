package domain

import "slices"

// Column is one named column of an ObservationTable.
type Column struct {
	Name   string
	Values []string
}

// ObservationTable is a parsed CSV report: ordered, equal-length columns.
// Tables are treated as values; operations return new tables.
type ObservationTable struct {
	Columns []Column
}

// Header returns the column names in order.
func (t ObservationTable) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RowCount returns the number of data rows.
func (t ObservationTable) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Rows returns the table in row-major order.
func (t ObservationTable) Rows() [][]string {
	rows := make([][]string, t.RowCount())
	for i := range rows {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Values[i]
		}
		rows[i] = row
	}
	return rows
}

// Column returns the values of the named column.
func (t ObservationTable) Column(name string) ([]string, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Value returns a single cell, or "" when the column or row does not exist.
func (t ObservationTable) Value(name string, row int) string {
	values, ok := t.Column(name)
	if !ok || row < 0 || row >= len(values) {
		return ""
	}
	return values[row]
}

// clone deep-copies the table so callers can hand out a result without
// sharing backing arrays with the input.
func (t ObservationTable) clone() ObservationTable {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Column{Name: c.Name, Values: slices.Clone(c.Values)}
	}
	return ObservationTable{Columns: cols}
}
