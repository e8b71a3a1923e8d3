package storage

import (
	"context"
	"errors"

	"catalog-insights/models"
)

var (
	// ErrUnsupportedSource is returned for an unknown source kind.
	ErrUnsupportedSource = errors.New("storage: unsupported source")
	// ErrEmptySource is returned when a sheet or file has no header row.
	ErrEmptySource = errors.New("storage: source has no header row")
)

// RowSource is anything that yields one raw sheet of product rows.
type RowSource interface {
	Load(ctx context.Context) (*models.RawTable, error)
}

// CatalogWriter is the interface for exporting a catalog or a filtered view.
type CatalogWriter interface {
	Write(catalog *models.Catalog) error
	Close() error
}
