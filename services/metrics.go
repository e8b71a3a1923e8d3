package services

import (
	"sort"

	"catalog-insights/models"
)

// BrandMetrics aggregates the rows of subset that belong to brand. A brand
// with no rows gets all-zero figures.
func BrandMetrics(subset *models.Catalog, brand string) models.BrandMetrics {
	m := models.BrandMetrics{Brand: brand}

	var total, ratingSum float64
	for _, p := range subset.Products() {
		if p.Brand != brand {
			continue
		}
		if m.TotalProducts == 0 || p.Price < m.MinPrice {
			m.MinPrice = p.Price
		}
		if m.TotalProducts == 0 || p.Price > m.MaxPrice {
			m.MaxPrice = p.Price
		}
		m.TotalProducts++
		total += p.Price
		m.TotalQuantity += p.Quantity
		if p.Rating > 0 {
			m.RatedProductCount++
			ratingSum += p.Rating
		}
	}

	if m.TotalProducts > 0 {
		m.AvgPrice = total / float64(m.TotalProducts)
		m.AvgQuantityPerProduct = float64(m.TotalQuantity) / float64(m.TotalProducts)
	}
	if m.RatedProductCount > 0 {
		m.AvgRating = ratingSum / float64(m.RatedProductCount)
	}
	return m
}

// MetricsByBrand computes BrandMetrics for each brand. With no brands given
// it covers every brand present in subset.
func MetricsByBrand(subset *models.Catalog, brands []string) map[string]models.BrandMetrics {
	if len(brands) == 0 {
		brands = subset.Brands()
	}
	out := make(map[string]models.BrandMetrics, len(brands))
	for _, b := range brands {
		out[b] = BrandMetrics(subset, b)
	}
	return out
}

// PriceGapTable compares every subject with every reference and with every
// other subject. Pairs whose reference has no products or a zero average
// price are left out, as are self-pairs. Output follows subject order, then
// references before fellow subjects.
func PriceGapTable(metricsByBrand map[string]models.BrandMetrics, subjects, references []string) []models.PriceGap {
	gaps := make([]models.PriceGap, 0)
	seenSubject := make(map[string]bool, len(subjects))

	for _, subject := range subjects {
		if seenSubject[subject] {
			continue
		}
		seenSubject[subject] = true

		subj := metricsByBrand[subject]
		seenRef := make(map[string]bool)
		for _, ref := range concat(references, subjects) {
			if ref == subject || seenRef[ref] {
				continue
			}
			seenRef[ref] = true

			refM, ok := metricsByBrand[ref]
			if !ok || refM.TotalProducts == 0 || refM.AvgPrice == 0 {
				continue
			}
			gaps = append(gaps, models.PriceGap{
				Subject:           subject,
				Reference:         ref,
				SubjectAvgPrice:   subj.AvgPrice,
				ReferenceAvgPrice: refM.AvgPrice,
				GapPct:            round2((refM.AvgPrice - subj.AvgPrice) / refM.AvgPrice * 100),
			})
		}
	}
	return gaps
}

// PriceExtremes returns brand's most and least expensive rows in subset,
// keeping the first row on ties. It returns nil when the brand has no rows.
func PriceExtremes(subset *models.Catalog, brand string) *models.Extremes {
	var ext *models.Extremes
	for _, p := range subset.Products() {
		if p.Brand != brand {
			continue
		}
		if ext == nil {
			ext = &models.Extremes{Brand: brand, Max: p, Min: p}
			continue
		}
		if p.Price > ext.Max.Price {
			ext.Max = p
		}
		if p.Price < ext.Min.Price {
			ext.Min = p
		}
	}
	return ext
}

// RankBrands orders brands by one metric. Equal values fall back to brand
// name ascending whatever the direction, so the order is reproducible.
func RankBrands(metricsByBrand map[string]models.BrandMetrics, key models.MetricKey, descending bool) []string {
	brands := make([]string, 0, len(metricsByBrand))
	for b := range metricsByBrand {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		vi := key.Value(metricsByBrand[brands[i]])
		vj := key.Value(metricsByBrand[brands[j]])
		if vi != vj {
			if descending {
				return vi > vj
			}
			return vi < vj
		}
		return brands[i] < brands[j]
	})
	return brands
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
