package services

import (
	"fmt"
	"sort"
	"strings"

	"catalog-insights/models"
)

// columnRule maps raw column names containing any token to a canonical field.
type columnRule struct {
	field  models.Field
	tokens []string
}

// columnRules is evaluated top to bottom; a column takes the first rule it
// matches.
var columnRules = []columnRule{
	{models.FieldImageURL, []string{"image", "img", "url"}},
	{models.FieldPrice, []string{"price", "current", "selling price"}},
	{models.FieldBrand, []string{"brand"}},
	{models.FieldTitle, []string{"title", "name", "product"}},
	{models.FieldSubcategory, []string{"subcategory", "sub"}},
	{models.FieldCategory, []string{"category"}},
	{models.FieldQuantity, []string{"qty", "quantity"}},
	{models.FieldRating, []string{"rating"}},
	{models.FieldLink, []string{"link"}},
	{models.FieldMarketplace, []string{"marketplace", "market place"}},
}

// SchemaVariant describes one deployment's spreadsheet layout.
type SchemaVariant struct {
	Name            string
	Required        []models.Field
	Optional        []models.Field
	DefaultCurrency string
}

var (
	coreFields = []models.Field{models.FieldBrand, models.FieldTitle, models.FieldPrice}

	VariantStandard = SchemaVariant{
		Name:     "standard",
		Required: coreFields,
		Optional: []models.Field{
			models.FieldLink, models.FieldImageURL, models.FieldCategory,
			models.FieldSubcategory, models.FieldMarketplace, models.FieldRating,
		},
		DefaultCurrency: "$",
	}

	VariantGallery = SchemaVariant{
		Name:     "gallery",
		Required: append(append([]models.Field(nil), coreFields...), models.FieldImageURL),
		Optional: []models.Field{
			models.FieldLink, models.FieldCategory, models.FieldSubcategory,
			models.FieldMarketplace, models.FieldRating,
		},
		DefaultCurrency: "RM",
	}

	VariantCategorized = SchemaVariant{
		Name:     "categorized",
		Required: append(append([]models.Field(nil), coreFields...), models.FieldCategory),
		Optional: []models.Field{
			models.FieldLink, models.FieldImageURL, models.FieldSubcategory,
			models.FieldMarketplace, models.FieldRating,
		},
		DefaultCurrency: "$",
	}

	VariantInventory = SchemaVariant{
		Name:     "inventory",
		Required: coreFields,
		Optional: []models.Field{
			models.FieldLink, models.FieldImageURL, models.FieldCategory,
			models.FieldSubcategory, models.FieldMarketplace, models.FieldRating,
			models.FieldQuantity,
		},
		DefaultCurrency: "$",
	}
)

var variants = map[string]SchemaVariant{
	VariantStandard.Name:    VariantStandard,
	VariantGallery.Name:     VariantGallery,
	VariantCategorized.Name: VariantCategorized,
	VariantInventory.Name:   VariantInventory,
}

// LookupVariant returns the built-in variant called name.
func LookupVariant(name string) (SchemaVariant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(variants))
		for n := range variants {
			names = append(names, n)
		}
		sort.Strings(names)
		return SchemaVariant{}, fmt.Errorf("unknown schema variant %q (known: %s)", name, strings.Join(names, ", "))
	}
	return v, nil
}

// Accepts reports whether the variant reads field f at all.
func (v SchemaVariant) Accepts(f models.Field) bool {
	for _, r := range v.Required {
		if r == f {
			return true
		}
	}
	for _, o := range v.Optional {
		if o == f {
			return true
		}
	}
	return false
}

// SchemaError reports required fields that no raw column maps to.
type SchemaError struct {
	Variant string
	Missing []models.Field
	Found   []string
}

func (e *SchemaError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		missing[i] = string(f)
	}
	return fmt.Sprintf("schema %s: missing required columns [%s]; found columns [%s]",
		e.Variant, strings.Join(missing, ", "), strings.Join(e.Found, ", "))
}

// NormalizeColumns maps each raw column to the canonical field of the first
// rule whose tokens it contains, compared lowercased and trimmed. Columns
// matching no rule are left out.
func NormalizeColumns(rawColumns []string) map[string]models.Field {
	out := make(map[string]models.Field, len(rawColumns))
	for _, col := range rawColumns {
		if f, ok := matchColumn(col); ok {
			out[col] = f
		}
	}
	return out
}

func matchColumn(col string) (models.Field, bool) {
	name := strings.ToLower(strings.TrimSpace(col))
	if name == "" {
		return "", false
	}
	for _, rule := range columnRules {
		for _, tok := range rule.tokens {
			if strings.Contains(name, tok) {
				return rule.field, true
			}
		}
	}
	return "", false
}

// resolveSources picks the raw column each field is read from. When several
// columns map to one field the later column wins.
func resolveSources(columns []string, mapping map[string]models.Field, v SchemaVariant) map[models.Field]string {
	sources := make(map[models.Field]string)
	for _, col := range columns {
		f, ok := mapping[col]
		if !ok || !v.Accepts(f) {
			continue
		}
		sources[f] = col
	}
	return sources
}
