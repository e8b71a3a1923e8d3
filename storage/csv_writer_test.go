package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-insights/models"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "export.csv")
	footwear := "Footwear"

	catalog := models.NewCatalog("standard", nil, []models.Product{
		{Brand: "Acme", Title: "Trail, Shoe", Price: 1200.5, Category: &footwear, Quantity: 3, Rating: 4.5, Link: "https://shop.example/1"},
		{Brand: "Zenith", Title: "Runner", Price: 95},
	})

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(catalog))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	table, err := ReadCSV(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, exportHeader, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Trail, Shoe", table.Rows[0]["title"])
	assert.Equal(t, "1200.5", table.Rows[0]["price"])
	assert.Equal(t, "Footwear", table.Rows[0]["category"])
	assert.Equal(t, "3", table.Rows[0]["quantity"])
	assert.Equal(t, "", table.Rows[1]["category"])
}

func TestCSVWriterEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	csvw, err := NewCSVWriter(path)
	require.NoError(t, err)

	var w CatalogWriter = csvw
	require.NoError(t, w.Write(models.EmptyCatalog()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "brand,title,price,category,subcategory,marketplace,quantity,rating,image_url,link\n", string(data))
}
