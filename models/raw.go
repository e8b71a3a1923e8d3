package models

import "sort"

// RawRow maps a source column name to its unprocessed cell value.
type RawRow map[string]any

// RawTable is a source sheet before normalisation. Columns keeps the source
// column order, which decides which column wins when two map to one field.
type RawTable struct {
	Columns []string
	Rows    []RawRow
}

// OrderedColumns returns Columns, or the sorted union of row keys when the
// source did not report a header order.
func (t *RawTable) OrderedColumns() []string {
	if t == nil {
		return nil
	}
	if len(t.Columns) > 0 {
		return t.Columns
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range t.Rows {
		for k := range row {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}
