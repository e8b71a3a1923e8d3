package storage

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"catalog-insights/models"
)

// XLSXSource reads one sheet of an Excel workbook. An empty Sheet means the
// first sheet.
type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Load(ctx context.Context) (*models.RawTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx: %q: %w", s.Path, ErrEmptySource)
		}
		sheet = sheets[0]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}

	table, err := tableFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %q sheet %q: %w", s.Path, sheet, err)
	}
	return table, nil
}
