package models

// BrandMetrics aggregates one brand over a catalog subset. A brand with no
// rows yields the zero value with Brand set.
type BrandMetrics struct {
	Brand                 string  `json:"brand"`
	AvgPrice              float64 `json:"avg_price"`
	MinPrice              float64 `json:"min_price"`
	MaxPrice              float64 `json:"max_price"`
	TotalProducts         int     `json:"total_products"`
	TotalQuantity         int     `json:"total_quantity"`
	AvgQuantityPerProduct float64 `json:"avg_quantity_per_product"`
	AvgRating             float64 `json:"avg_rating"`
	RatedProductCount     int     `json:"rated_product_count"`
}

// MetricKey selects the BrandMetrics field used for ranking.
type MetricKey string

const (
	MetricAvgPrice      MetricKey = "avg_price"
	MetricMinPrice      MetricKey = "min_price"
	MetricMaxPrice      MetricKey = "max_price"
	MetricTotalProducts MetricKey = "total_products"
	MetricTotalQuantity MetricKey = "total_quantity"
	MetricAvgQuantity   MetricKey = "avg_quantity_per_product"
	MetricAvgRating     MetricKey = "avg_rating"
	MetricRatedProducts MetricKey = "rated_product_count"
)

// Valid reports whether k names a known metric.
func (k MetricKey) Valid() bool {
	switch k {
	case MetricAvgPrice, MetricMinPrice, MetricMaxPrice, MetricTotalProducts,
		MetricTotalQuantity, MetricAvgQuantity, MetricAvgRating, MetricRatedProducts:
		return true
	}
	return false
}

// Value reads the metric selected by k from m.
func (k MetricKey) Value(m BrandMetrics) float64 {
	switch k {
	case MetricAvgPrice:
		return m.AvgPrice
	case MetricMinPrice:
		return m.MinPrice
	case MetricMaxPrice:
		return m.MaxPrice
	case MetricTotalProducts:
		return float64(m.TotalProducts)
	case MetricTotalQuantity:
		return float64(m.TotalQuantity)
	case MetricAvgQuantity:
		return m.AvgQuantityPerProduct
	case MetricAvgRating:
		return m.AvgRating
	case MetricRatedProducts:
		return float64(m.RatedProductCount)
	}
	return 0
}

// PriceGap compares a subject brand's average price with a reference brand's.
// GapPct is positive when the subject is cheaper than the reference.
type PriceGap struct {
	Subject           string  `json:"subject"`
	Reference         string  `json:"reference"`
	SubjectAvgPrice   float64 `json:"subject_avg_price"`
	ReferenceAvgPrice float64 `json:"reference_avg_price"`
	GapPct            float64 `json:"gap_pct"`
}

// Extremes holds a brand's most and least expensive products.
type Extremes struct {
	Brand string  `json:"brand"`
	Max   Product `json:"max_product"`
	Min   Product `json:"min_product"`
}

// GalleryColumn is one brand's column of product cards.
type GalleryColumn struct {
	Brand    string    `json:"brand"`
	IsOurs   bool      `json:"is_ours"`
	Products []Product `json:"products"`
}

// ViewSummary lets callers tell an empty catalog from over-narrow filters.
type ViewSummary struct {
	CatalogSize  int `json:"catalog_size"`
	FilteredSize int `json:"filtered_size"`
}

// NoData reports whether the catalog itself is empty.
func (s ViewSummary) NoData() bool { return s.CatalogSize == 0 }

// FiltersTooNarrow reports whether filters removed every row of a non-empty catalog.
func (s ViewSummary) FiltersTooNarrow() bool {
	return s.CatalogSize > 0 && s.FilteredSize == 0
}
