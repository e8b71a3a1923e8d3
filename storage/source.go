package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"catalog-insights/models"
)

// SourceSpec selects and locates the raw input.
type SourceSpec struct {
	// Kind is csv, xlsx or postgres. Empty means guess from Path.
	Kind  string
	Path  string
	Sheet string
	DSN   string
	Table string
}

// NewSource builds the RowSource described by s.
func NewSource(s SourceSpec) (RowSource, error) {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		switch strings.ToLower(filepath.Ext(s.Path)) {
		case ".xlsx", ".xlsm":
			kind = "xlsx"
		default:
			kind = "csv"
		}
	}

	switch kind {
	case "csv":
		return &CSVSource{Path: s.Path}, nil
	case "xlsx", "excel":
		return &XLSXSource{Path: s.Path, Sheet: s.Sheet}, nil
	case "postgres":
		return &PostgresSource{DSN: s.DSN, Table: s.Table}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, s.Kind)
	}
}

// tableFromRecords turns a header row plus data rows into a RawTable.
// Fully blank rows are skipped; short rows leave trailing cells unset.
func tableFromRecords(records [][]string) (*models.RawTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptySource
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	table := &models.RawTable{Columns: header}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(models.RawRow, len(header))
		for i, col := range header {
			if col == "" || i >= len(rec) {
				continue
			}
			row[col] = rec[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
