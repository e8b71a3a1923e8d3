package models

// ComparisonReport holds the computed analytics for one filtered view.
type ComparisonReport struct {
	Summary            ViewSummary             `json:"summary"`
	Currency           string                  `json:"currency"`
	OurBrands          []string                `json:"our_brands"`
	Competitors        []string                `json:"competitors"`
	Metrics            map[string]BrandMetrics `json:"metrics"`
	Gaps               []PriceGap              `json:"gaps"`
	Extremes           []Extremes              `json:"extremes"`
	RankedByAvgPrice   []string                `json:"ranked_by_avg_price"`
	ProductsByCategory map[string]int          `json:"products_by_category"`
}

// DropReason labels why a raw row was left out of the catalog.
type DropReason string

const (
	DropMissingBrand     DropReason = "missing_brand"
	DropMissingTitle     DropReason = "missing_title"
	DropInvalidPrice     DropReason = "invalid_price"
	DropNonPositivePrice DropReason = "non_positive_price"
)

// Diagnostics describes how a raw table became a catalog.
type Diagnostics struct {
	// ColumnMap maps each matched raw column to its canonical field.
	ColumnMap map[string]Field `json:"column_map"`
	// Sources maps each canonical field to the raw column it is read from.
	Sources   map[Field]string   `json:"sources"`
	Unmatched []string           `json:"unmatched"`
	RowsRead  int                `json:"rows_read"`
	RowsKept  int                `json:"rows_kept"`
	Dropped   map[DropReason]int `json:"dropped"`
}

// DroppedTotal sums rows dropped for any reason.
func (d Diagnostics) DroppedTotal() int {
	n := 0
	for _, c := range d.Dropped {
		n += c
	}
	return n
}
