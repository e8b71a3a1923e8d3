package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"catalog-insights/models"
)

var exportHeader = []string{
	"brand", "title", "price", "category", "subcategory", "marketplace",
	"quantity", "rating", "image_url", "link",
}

// CSVWriter exports catalog rows to a CSV file with canonical headers.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends every row of catalog. A missing category is written blank.
func (c *CSVWriter) Write(catalog *models.Catalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range catalog.Products() {
		category := ""
		if p.Category != nil {
			category = *p.Category
		}
		row := []string{
			p.Brand,
			p.Title,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			category,
			p.Subcategory,
			p.Marketplace,
			strconv.Itoa(p.Quantity),
			strconv.FormatFloat(p.Rating, 'f', -1, 64),
			p.ImageURL,
			p.Link,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
