package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Catalog is the normalised, typed product table. It is never modified after
// construction; filtering and backfills produce new catalogs.
type Catalog struct {
	id        string
	variant   string
	fields    map[Field]bool
	products  []Product
	createdAt time.Time
}

// NewCatalog snapshots products into a catalog with a fresh ID.
func NewCatalog(variant string, fields []Field, products []Product) *Catalog {
	set := make(map[Field]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return &Catalog{
		id:        uuid.NewString(),
		variant:   variant,
		fields:    set,
		products:  append([]Product(nil), products...),
		createdAt: time.Now(),
	}
}

// EmptyCatalog returns a catalog with no rows and no matched fields.
func EmptyCatalog() *Catalog {
	return NewCatalog("", nil, nil)
}

func (c *Catalog) ID() string           { return c.id }
func (c *Catalog) Variant() string      { return c.variant }
func (c *Catalog) CreatedAt() time.Time { return c.createdAt }

// Len returns the number of rows; a nil catalog has none.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Has reports whether the source provided a column for f.
func (c *Catalog) Has(f Field) bool {
	if c == nil {
		return false
	}
	return c.fields[f]
}

// Fields returns the matched canonical fields in name order.
func (c *Catalog) Fields() []Field {
	if c == nil {
		return nil
	}
	out := make([]Field, 0, len(c.fields))
	for f := range c.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Products returns a copy of the rows in catalog order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return append([]Product(nil), c.products...)
}

// Subset derives a view holding the rows keep accepts. The view shares the
// parent's ID and matched fields.
func (c *Catalog) Subset(keep func(Product) bool) *Catalog {
	if c == nil {
		return EmptyCatalog()
	}
	rows := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			rows = append(rows, p)
		}
	}
	return &Catalog{
		id:        c.id,
		variant:   c.variant,
		fields:    c.fields,
		products:  rows,
		createdAt: c.createdAt,
	}
}

// WithCategories returns a new catalog where rows with no category take the
// label proposed for their title. Rows already categorised and titles the
// service could not place are left alone.
func (c *Catalog) WithCategories(labels map[string]CategoryResult) *Catalog {
	if c == nil {
		return EmptyCatalog()
	}
	rows := make([]Product, len(c.products))
	copy(rows, c.products)
	filled := false
	for i := range rows {
		if rows[i].Category != nil {
			continue
		}
		label, ok := labels[rows[i].Title]
		if !ok || label.IsUncategorized() {
			continue
		}
		main := label.Main
		rows[i].Category = &main
		if rows[i].Subcategory == "" {
			rows[i].Subcategory = label.Sub
		}
		filled = true
	}

	fields := make([]Field, 0, len(c.fields)+2)
	for f := range c.fields {
		fields = append(fields, f)
	}
	if filled {
		fields = append(fields, FieldCategory, FieldSubcategory)
	}
	return NewCatalog(c.variant, fields, rows)
}

// Brands lists distinct brands in first-seen order.
func (c *Catalog) Brands() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	return out
}

// Categories lists distinct category labels, sorted. Rows with no category
// contribute Uncategorized.
func (c *Catalog) Categories() []string {
	return c.distinct(func(p Product) string { return p.CategoryLabel() })
}

// Subcategories lists distinct non-empty subcategories, sorted.
func (c *Catalog) Subcategories() []string {
	return c.distinct(func(p Product) string { return p.Subcategory })
}

// Marketplaces lists distinct non-empty marketplaces, sorted.
func (c *Catalog) Marketplaces() []string {
	return c.distinct(func(p Product) string { return p.Marketplace })
}

// PriceBounds returns the lowest and highest price, ok is false when empty.
func (c *Catalog) PriceBounds() (min, max float64, ok bool) {
	if c.Len() == 0 {
		return 0, 0, false
	}
	min, max = c.products[0].Price, c.products[0].Price
	for _, p := range c.products[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return min, max, true
}

func (c *Catalog) distinct(key func(Product) string) []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
