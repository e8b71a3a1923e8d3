package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"catalog-insights/models"
)

// CSVSource reads a comma-separated sheet with a header row.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Load(ctx context.Context) (*models.RawTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", s.Path, err)
	}
	defer f.Close()

	table, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", s.Path, err)
	}
	return table, nil
}

// ReadCSV parses CSV from r. Rows may have differing cell counts.
func ReadCSV(ctx context.Context, r io.Reader) (*models.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, rec)
	}
	return tableFromRecords(records)
}
