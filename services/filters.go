package services

import (
	"strings"

	"catalog-insights/models"
)

// ApplyFilters returns the rows of catalog that satisfy every facet of f.
// Each facet is an independent predicate, so the order in which configs are
// applied never changes the result.
func ApplyFilters(catalog *models.Catalog, f models.FilterConfig) *models.Catalog {
	if f.Unsatisfiable() {
		return catalog.Subset(func(models.Product) bool { return false })
	}
	match := compileFilter(f)
	return catalog.Subset(match)
}

// Summarize reports the sizes needed to tell "no data" from "filters too narrow".
func Summarize(catalog, subset *models.Catalog) models.ViewSummary {
	return models.ViewSummary{CatalogSize: catalog.Len(), FilteredSize: subset.Len()}
}

func compileFilter(f models.FilterConfig) func(models.Product) bool {
	var brands map[string]struct{}
	if len(f.Brands) > 0 {
		brands = make(map[string]struct{}, len(f.Brands))
		for _, b := range f.Brands {
			brands[b] = struct{}{}
		}
	}
	category := strings.TrimSpace(f.Category)
	subcategory := strings.TrimSpace(f.Subcategory)
	marketplace := strings.TrimSpace(f.Marketplace)

	return func(p models.Product) bool {
		if brands != nil {
			if _, ok := brands[p.Brand]; !ok {
				return false
			}
		}
		if !models.IsAll(category) && !matchCategory(p, category) {
			return false
		}
		if !models.IsAll(subcategory) && p.Subcategory != subcategory {
			return false
		}
		if !models.IsAll(marketplace) && p.Marketplace != marketplace {
			return false
		}
		// comparisons with a NaN bound are false, so NaN never excludes
		if r := f.PriceRange; r != nil && (p.Price < r.Min || p.Price > r.Max) {
			return false
		}
		if f.MinRating != nil && p.Rating < *f.MinRating {
			return false
		}
		if f.MinQuantity != nil && p.Quantity < *f.MinQuantity {
			return false
		}
		return true
	}
}

// matchCategory treats a missing category as Uncategorized.
func matchCategory(p models.Product, want string) bool {
	if p.Category == nil {
		return want == models.Uncategorized
	}
	return *p.Category == want
}
