package services

import (
	"sort"

	"catalog-insights/models"
)

// Gallery lays out one column per brand, our brands first, each column's
// products cheapest first. Brands listed twice keep their first position.
func Gallery(subset *models.Catalog, ourBrands, competitors []string) []models.GalleryColumn {
	byBrand := make(map[string][]models.Product)
	for _, p := range subset.Products() {
		byBrand[p.Brand] = append(byBrand[p.Brand], p)
	}

	ours := make(map[string]bool, len(ourBrands))
	for _, b := range ourBrands {
		ours[b] = true
	}

	seen := make(map[string]bool)
	columns := make([]models.GalleryColumn, 0, len(ourBrands)+len(competitors))
	for _, brand := range concat(ourBrands, competitors) {
		if seen[brand] {
			continue
		}
		seen[brand] = true

		products := make([]models.Product, len(byBrand[brand]))
		copy(products, byBrand[brand])
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
		columns = append(columns, models.GalleryColumn{
			Brand:    brand,
			IsOurs:   ours[brand],
			Products: products,
		})
	}
	return columns
}
