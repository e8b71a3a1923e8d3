package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog-insights/models"
	"catalog-insights/utils"
)

// Cleaner turns raw source tables into canonical catalogs.
type Cleaner struct {
	logger  *utils.Logger
	metrics *utils.Metrics
}

// NewCleaner creates a Cleaner with the given logger. metrics may be nil.
func NewCleaner(logger *utils.Logger, metrics *utils.Metrics) *Cleaner {
	return &Cleaner{logger: logger, metrics: metrics}
}

// BuildCatalog maps the table's columns onto the canonical fields of variant,
// cleans every row and drops rows without a brand, a title or a positive
// price. It returns a *SchemaError, and no catalog, when a required field has
// no column at all.
func (c *Cleaner) BuildCatalog(table *models.RawTable, variant SchemaVariant) (*models.Catalog, models.Diagnostics, error) {
	columns := table.OrderedColumns()
	mapping := NormalizeColumns(columns)
	sources := resolveSources(columns, mapping, variant)

	diag := models.Diagnostics{
		ColumnMap: mapping,
		Sources:   sources,
		Dropped:   make(map[models.DropReason]int),
	}
	for _, col := range columns {
		if _, ok := mapping[col]; !ok {
			diag.Unmatched = append(diag.Unmatched, col)
			c.logger.Debug("[loader] Ignoring unmatched column %q", col)
		}
	}

	var missing []models.Field
	for _, f := range variant.Required {
		if _, ok := sources[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		c.metrics.IncSchemaError()
		return nil, diag, &SchemaError{
			Variant: variant.Name,
			Missing: missing,
			Found:   append([]string(nil), columns...),
		}
	}

	c.logger.Info("[loader] Column mapping (%s): %s", variant.Name, describeSources(sources))

	var rows []models.RawRow
	if table != nil {
		rows = table.Rows
	}
	diag.RowsRead = len(rows)

	products := make([]models.Product, 0, len(rows))
	for _, raw := range rows {
		p, reason, ok := c.cleanRow(raw, sources)
		if !ok {
			diag.Dropped[reason]++
			continue
		}
		products = append(products, p)
	}
	diag.RowsKept = len(products)

	fields := make([]models.Field, 0, len(sources))
	for f := range sources {
		fields = append(fields, f)
	}

	c.metrics.AddRowsLoaded(diag.RowsKept)
	for reason, n := range diag.Dropped {
		c.metrics.AddRowsDropped(string(reason), n)
	}
	c.logger.Info("[loader] Cleaned %d → %d rows (dropped %d: %v)",
		diag.RowsRead, diag.RowsKept, diag.DroppedTotal(), diag.Dropped)

	return models.NewCatalog(variant.Name, fields, products), diag, nil
}

func (c *Cleaner) cleanRow(raw models.RawRow, sources map[models.Field]string) (models.Product, models.DropReason, bool) {
	get := func(f models.Field) (string, bool) {
		col, ok := sources[f]
		if !ok {
			return "", false
		}
		return strings.TrimSpace(cellString(raw[col])), true
	}

	brand, _ := get(models.FieldBrand)
	if brand == "" {
		return models.Product{}, models.DropMissingBrand, false
	}
	title, _ := get(models.FieldTitle)
	if title == "" {
		return models.Product{}, models.DropMissingTitle, false
	}
	rawPrice, _ := get(models.FieldPrice)
	price, err := ParsePrice(rawPrice)
	if err != nil {
		c.logger.Debug("[loader] Dropping %q: %v", title, err)
		return models.Product{}, models.DropInvalidPrice, false
	}
	if price <= 0 {
		return models.Product{}, models.DropNonPositivePrice, false
	}

	p := models.Product{Brand: brand, Title: title, Price: price}
	p.Link, _ = get(models.FieldLink)
	p.ImageURL, _ = get(models.FieldImageURL)
	p.Subcategory, _ = get(models.FieldSubcategory)
	p.Marketplace, _ = get(models.FieldMarketplace)
	if v, ok := get(models.FieldCategory); ok && v != "" {
		p.Category = &v
	}
	if v, ok := get(models.FieldQuantity); ok {
		p.Quantity = parseQuantity(v)
	}
	if v, ok := get(models.FieldRating); ok {
		p.Rating = parseRating(v)
	}
	return p, "", true
}

// parseQuantity coerces a cell to a non-negative integer; anything else is 0.
func parseQuantity(s string) int {
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}

// parseRating coerces a cell to a rating in [0, 5]; anything else is 0.
func parseRating(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) {
		return 0
	}
	if val < 0 || val > 5 {
		return 0
	}
	return val
}

// cellString renders a raw cell as text. Blank-like values (nil, NaN) become "".
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return cellString(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func describeSources(sources map[models.Field]string) string {
	parts := make([]string, 0, len(sources))
	for f, col := range sources {
		parts = append(parts, fmt.Sprintf("%s←%q", f, col))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
