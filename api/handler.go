package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-insights/models"
	"catalog-insights/services"
	"catalog-insights/utils"
)

// Handler serves the dashboard's read model over one session.
type Handler struct {
	session    *Session
	insights   *services.InsightService
	categories *services.CategoryService
	metrics    *utils.Metrics
	logger     *utils.Logger
	currency   string
}

// NewHandler creates a Handler. categories and metrics may be nil.
func NewHandler(session *Session, insights *services.InsightService, categories *services.CategoryService,
	metrics *utils.Metrics, logger *utils.Logger, currency string) *Handler {
	return &Handler{
		session:    session,
		insights:   insights,
		categories: categories,
		metrics:    metrics,
		logger:     logger,
		currency:   currency,
	}
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/catalog", h.ListProducts)
	r.GET("/facets", h.Facets)
	r.GET("/report", h.Report)
	r.GET("/brands/:brand/metrics", h.BrandMetrics)
	r.GET("/brands/:brand/extremes", h.BrandExtremes)
	r.GET("/gaps", h.PriceGaps)
	r.GET("/rank", h.Rank)
	r.GET("/gallery", h.Gallery)
	r.POST("/categorize", h.Categorize)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))
	}
}

// Health reports the session catalog ID and size.
func (h *Handler) Health(c *gin.Context) {
	catalog := h.session.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"catalog_id": catalog.ID(),
		"products":   catalog.Len(),
	})
}

// ListProducts returns the filtered rows plus both sizes so clients can tell
// an empty catalog from filters that are too narrow.
func (h *Handler) ListProducts(c *gin.Context) {
	catalog, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	products := subset.Products()
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  services.Summarize(catalog, subset),
		"currency": h.currency,
		"products": products,
	})
}

// Facets lists the values each filter can take, plus load diagnostics.
func (h *Handler) Facets(c *gin.Context) {
	catalog := h.session.Catalog()
	lo, hi, _ := catalog.PriceBounds()
	c.JSON(http.StatusOK, gin.H{
		"catalog_id":    catalog.ID(),
		"fields":        catalog.Fields(),
		"brands":        catalog.Brands(),
		"categories":    catalog.Categories(),
		"subcategories": catalog.Subcategories(),
		"marketplaces":  catalog.Marketplaces(),
		"price_min":     lo,
		"price_max":     hi,
		"diagnostics":   h.session.Diagnostics(),
	})
}

// Report returns the full comparison report for the filtered view.
func (h *Handler) Report(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	report := h.insights.Generate(h.session.Catalog(), filters,
		c.QueryArray("our"), c.QueryArray("competitor"), h.currency)
	c.JSON(http.StatusOK, report)
}

// BrandMetrics returns one brand's aggregates over the filtered view.
func (h *Handler) BrandMetrics(c *gin.Context) {
	_, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.BrandMetrics(subset, c.Param("brand")))
}

// BrandExtremes answers with a null "extremes" when the brand has no rows.
func (h *Handler) BrandExtremes(c *gin.Context) {
	_, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	brand := c.Param("brand")
	c.JSON(http.StatusOK, gin.H{
		"brand":    brand,
		"extremes": services.PriceExtremes(subset, brand),
	})
}

// PriceGaps compares subject brands with references and with each other.
func (h *Handler) PriceGaps(c *gin.Context) {
	_, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	subjects := c.QueryArray("subject")
	references := c.QueryArray("reference")
	if len(subjects) == 0 {
		badRequest(c, errors.New("at least one subject brand is required"))
		return
	}
	metrics := services.MetricsByBrand(subset, append(append([]string(nil), subjects...), references...))
	c.JSON(http.StatusOK, gin.H{
		"gaps": services.PriceGapTable(metrics, subjects, references),
	})
}

// Rank orders brands by one metric key.
func (h *Handler) Rank(c *gin.Context) {
	_, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	key := models.MetricKey(c.DefaultQuery("key", string(models.MetricAvgPrice)))
	if !key.Valid() {
		badRequest(c, fmt.Errorf("unknown metric %q", key))
		return
	}
	desc, err := strconv.ParseBool(c.DefaultQuery("desc", "false"))
	if err != nil {
		badRequest(c, fmt.Errorf("desc: %w", err))
		return
	}
	metrics := services.MetricsByBrand(subset, nil)
	c.JSON(http.StatusOK, gin.H{
		"key":     key,
		"brands":  services.RankBrands(metrics, key, desc),
		"metrics": metrics,
	})
}

// Gallery returns one product column per brand, cheapest first.
func (h *Handler) Gallery(c *gin.Context) {
	_, subset, ok := h.filtered(c)
	if !ok {
		return
	}
	our := c.QueryArray("our")
	competitors := c.QueryArray("competitor")
	if len(our) == 0 && len(competitors) == 0 {
		our = subset.Brands()
	}
	c.JSON(http.StatusOK, gin.H{
		"currency": h.currency,
		"columns":  services.Gallery(subset, our, competitors),
	})
}

// Categorize backfills missing categories and installs the new catalog.
func (h *Handler) Categorize(c *gin.Context) {
	if !h.categories.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "categorization service is not configured"})
		return
	}

	prev := h.session.Catalog()
	next, report, err := h.categories.Backfill(c.Request.Context(), prev)
	if err != nil {
		h.logger.Warn("[api] Backfill interrupted: %v", err)
	}
	if !h.session.Replace(prev, next) {
		c.JSON(http.StatusConflict, gin.H{"error": "catalog changed during backfill", "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) filtered(c *gin.Context) (*models.Catalog, *models.Catalog, bool) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return nil, nil, false
	}
	catalog := h.session.Catalog()
	h.metrics.IncFilterEval()
	return catalog, services.ApplyFilters(catalog, filters), true
}

// parseFilters reads facet selections from query parameters.
func parseFilters(c *gin.Context) (models.FilterConfig, error) {
	f := models.FilterConfig{
		Brands:      c.QueryArray("brand"),
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Marketplace: c.Query("marketplace"),
	}

	minPrice, hasMin, err := queryFloat(c, "min_price")
	if err != nil {
		return f, err
	}
	maxPrice, hasMax, err := queryFloat(c, "max_price")
	if err != nil {
		return f, err
	}
	if hasMin || hasMax {
		r := models.PriceRange{Min: 0, Max: maxPrice}
		if hasMin {
			r.Min = minPrice
		}
		if !hasMax {
			r.Max = math.MaxFloat64
		}
		f.PriceRange = &r
	}

	if v, ok, err := queryFloat(c, "min_rating"); err != nil {
		return f, err
	} else if ok {
		f.MinRating = &v
	}

	if raw := strings.TrimSpace(c.Query("min_quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("min_quantity: %w", err)
		}
		f.MinQuantity = &n
	}
	return f, nil
}

func queryFloat(c *gin.Context, key string) (float64, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%s: must be a finite number, got %q", key, raw)
	}
	return v, true, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
