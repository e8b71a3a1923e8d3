package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"catalog-insights/models"
	"catalog-insights/utils"
)

// InsightService builds and prints brand comparison reports.
type InsightService struct {
	logger  *utils.Logger
	metrics *utils.Metrics
}

// NewInsightService creates an InsightService. metrics may be nil.
func NewInsightService(logger *utils.Logger, metrics *utils.Metrics) *InsightService {
	return &InsightService{logger: logger, metrics: metrics}
}

// Generate filters catalog and compares our brands against competitors.
// With no brands selected on either side every brand in the view is compared
// with every other.
func (s *InsightService) Generate(catalog *models.Catalog, filters models.FilterConfig, ourBrands, competitors []string, currency string) *models.ComparisonReport {
	subset := ApplyFilters(catalog, filters)
	s.metrics.IncFilterEval()

	report := &models.ComparisonReport{
		Summary:            Summarize(catalog, subset),
		Currency:           currency,
		OurBrands:          ourBrands,
		Competitors:        competitors,
		ProductsByCategory: make(map[string]int),
	}

	subjects, references := ourBrands, competitors
	if len(subjects) == 0 && len(references) == 0 {
		subjects = subset.Brands()
	}
	brands := dedupe(concat(subjects, references))

	report.Metrics = MetricsByBrand(subset, brands)
	report.Gaps = PriceGapTable(report.Metrics, subjects, references)
	report.RankedByAvgPrice = RankBrands(report.Metrics, models.MetricAvgPrice, true)

	for _, b := range brands {
		if ext := PriceExtremes(subset, b); ext != nil {
			report.Extremes = append(report.Extremes, *ext)
		}
	}
	for _, p := range subset.Products() {
		report.ProductsByCategory[p.CategoryLabel()]++
	}

	switch {
	case report.Summary.NoData():
		s.logger.Warn("[engine] Catalog is empty")
	case report.Summary.FiltersTooNarrow():
		s.logger.Warn("[engine] Filters matched none of %d products", report.Summary.CatalogSize)
	default:
		s.logger.Info("[engine] Compared %d brands over %d/%d products (%d gaps)",
			len(brands), report.Summary.FilteredSize, report.Summary.CatalogSize, len(report.Gaps))
	}
	return report
}

// Print renders r as a coloured terminal report.
func (s *InsightService) Print(w io.Writer, r *models.ComparisonReport) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)
	cur := r.Currency

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 BRAND PRICE COMPARISON\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Products in catalog : \033[1m%d\033[0m\n", r.Summary.CatalogSize)
	fmt.Fprintf(w, "  Products in view    : \033[1m%d\033[0m\n", r.Summary.FilteredSize)
	switch {
	case r.Summary.NoData():
		fmt.Fprintf(w, "  No products were loaded\n\n")
		fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
		return
	case r.Summary.FiltersTooNarrow():
		fmt.Fprintf(w, "  No products match the selected filters\n\n")
		fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Brand Metrics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %-20s %8s %12s %12s %12s\n", "Brand", "Products", "Avg", "Min", "Max")
	for _, brand := range r.RankedByAvgPrice {
		m := r.Metrics[brand]
		marker := " "
		if contains(r.OurBrands, brand) {
			marker = "🏆"
		}
		fmt.Fprintf(w, "%s %-20s %8d %12s %12s %12s\n", marker, truncate(brand, 20), m.TotalProducts,
			money(cur, m.AvgPrice), money(cur, m.MinPrice), money(cur, m.MaxPrice))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Gaps\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Gaps) == 0 {
		fmt.Fprintf(w, "  No comparable brands\n")
	}
	for _, g := range r.Gaps {
		colour := "32"
		word := "cheaper"
		if g.GapPct < 0 {
			colour, word = "31", "dearer"
		}
		fmt.Fprintf(w, "  %-18s vs %-18s \033[1;%sm%+.2f%%\033[0m (%s)\n",
			truncate(g.Subject, 18), truncate(g.Reference, 18), colour, g.GapPct, word)
	}
	fmt.Fprintln(w)

	if len(r.Extremes) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Price Extremes\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for _, e := range r.Extremes {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", e.Brand)
			fmt.Fprintf(w, "    ▲ %-44s \033[1;31m%s\033[0m\n", truncate(e.Max.Title, 44), money(cur, e.Max.Price))
			fmt.Fprintf(w, "    ▼ %-44s \033[1;32m%s\033[0m\n", truncate(e.Min.Title, 44), money(cur, e.Min.Price))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Products by Category\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	type catCount struct {
		cat   string
		count int
	}
	cats := make([]catCount, 0, len(r.ProductsByCategory))
	for cat, n := range r.ProductsByCategory {
		cats = append(cats, catCount{cat, n})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].count != cats[j].count {
			return cats[i].count > cats[j].count
		}
		return cats[i].cat < cats[j].cat
	})
	for _, cc := range cats {
		bar := strings.Repeat("█", min(cc.count, 40))
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.cat, 28), bar, cc.count)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// money formats a price with the display currency. The symbol is cosmetic.
func money(currency string, v float64) string {
	return fmt.Sprintf("%s %.2f", currency, round2(v))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
