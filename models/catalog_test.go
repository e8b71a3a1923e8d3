package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDisplayTitle(t *testing.T) {
	short := Product{Title: "Trail Runner"}
	assert.Equal(t, "Trail Runner", short.DisplayTitle())

	exact := Product{Title: strings.Repeat("x", 60)}
	assert.Equal(t, exact.Title, exact.DisplayTitle())

	long := Product{Title: strings.Repeat("é", 75)}
	got := long.DisplayTitle()
	assert.Equal(t, strings.Repeat("é", 60)+"...", got)
	assert.Len(t, []rune(long.Title), 75, "stored title is untouched")
}

func TestProductHelpers(t *testing.T) {
	p := Product{ImageURL: " nan "}
	assert.False(t, p.HasImage())
	p.ImageURL = "https://cdn.example/a.jpg"
	assert.True(t, p.HasImage())

	assert.Equal(t, Uncategorized, p.CategoryLabel())
	p.Category = strPtr("Shoes")
	assert.Equal(t, "Shoes", p.CategoryLabel())

	assert.True(t, CategoryResult{}.IsUncategorized())
	assert.True(t, CategoryResult{Main: "uncategorized"}.IsUncategorized())
	assert.False(t, CategoryResult{Main: "Shoes"}.IsUncategorized())
}

func TestCatalogIsImmutable(t *testing.T) {
	rows := []Product{{Brand: "A", Title: "a", Price: 1}}
	c := NewCatalog("standard", []Field{FieldBrand}, rows)

	rows[0].Brand = "changed"
	assert.Equal(t, "A", c.Products()[0].Brand)

	out := c.Products()
	out[0].Brand = "changed"
	assert.Equal(t, "A", c.Products()[0].Brand)
}

func TestWithCategoriesCopyOnWrite(t *testing.T) {
	c := NewCatalog("standard", []Field{FieldBrand, FieldTitle, FieldPrice}, []Product{
		{Brand: "A", Title: "cap", Price: 10},
		{Brand: "A", Title: "tote", Price: 20, Category: strPtr("Bags")},
		{Brand: "A", Title: "box", Price: 30},
	})

	next := c.WithCategories(map[string]CategoryResult{
		"cap":  {Main: "Accessories", Sub: "Hats"},
		"tote": {Main: "Ignored"},
		"box":  {Main: Uncategorized},
	})

	assert.NotEqual(t, c.ID(), next.ID())
	assert.False(t, c.Has(FieldCategory))
	assert.True(t, next.Has(FieldCategory))

	for _, p := range c.Products() {
		if p.Title != "tote" {
			assert.Nil(t, p.Category)
		}
	}

	rows := next.Products()
	require.NotNil(t, rows[0].Category)
	assert.Equal(t, "Accessories", *rows[0].Category)
	assert.Equal(t, "Hats", rows[0].Subcategory)
	assert.Equal(t, "Bags", *rows[1].Category)
	assert.Nil(t, rows[2].Category)
}

func TestSubsetSharesIdentity(t *testing.T) {
	c := NewCatalog("standard", []Field{FieldBrand}, []Product{
		{Brand: "A", Price: 5}, {Brand: "B", Price: 50},
	})
	sub := c.Subset(func(p Product) bool { return p.Brand == "B" })

	assert.Equal(t, c.ID(), sub.ID())
	assert.Equal(t, 1, sub.Len())
	assert.True(t, sub.Has(FieldBrand))
	assert.Equal(t, 2, c.Len())
}

func TestCatalogFacets(t *testing.T) {
	c := NewCatalog("standard", nil, []Product{
		{Brand: "Zed", Price: 30, Marketplace: "Shopee", Subcategory: "Tops"},
		{Brand: "Acme", Price: 5, Category: strPtr("Apparel")},
		{Brand: "Zed", Price: 80, Marketplace: "Lazada"},
	})

	assert.Equal(t, []string{"Zed", "Acme"}, c.Brands())
	assert.Equal(t, []string{"Apparel", Uncategorized}, c.Categories())
	assert.Equal(t, []string{"Tops"}, c.Subcategories())
	assert.Equal(t, []string{"Lazada", "Shopee"}, c.Marketplaces())

	lo, hi, ok := c.PriceBounds()
	assert.True(t, ok)
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 80.0, hi)

	_, _, ok = EmptyCatalog().PriceBounds()
	assert.False(t, ok)

	var nilCatalog *Catalog
	assert.Equal(t, 0, nilCatalog.Len())
	assert.Nil(t, nilCatalog.Brands())
}
