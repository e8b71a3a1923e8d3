package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"catalog-insights/models"
	"catalog-insights/utils"
)

// Categorizer proposes a category for each title, in order. Implementations
// may fail for a whole batch.
type Categorizer interface {
	Categorize(ctx context.Context, titles []string) ([]models.CategoryResult, error)
}

// CategoryOptions tunes how backfills talk to the categorizer.
type CategoryOptions struct {
	BatchSize   int
	Concurrency int
	RateLimitMs int
	MaxRetries  int
	RetryDelay  time.Duration
	CacheSize   int
}

// DefaultCategoryOptions returns conservative defaults for a hosted model.
func DefaultCategoryOptions() CategoryOptions {
	return CategoryOptions{
		BatchSize:   20,
		Concurrency: 2,
		RateLimitMs: 500,
		MaxRetries:  3,
		RetryDelay:  time.Second,
		CacheSize:   1024,
	}
}

// BackfillReport summarises one backfill run.
type BackfillReport struct {
	CatalogID     string `json:"catalog_id"`
	Titles        int    `json:"titles"`
	CacheHits     int    `json:"cache_hits"`
	Batches       int    `json:"batches"`
	FailedBatches int    `json:"failed_batches"`
	Categorized   int    `json:"categorized"`
	Uncategorized int    `json:"uncategorized"`
}

// CategoryService fills in missing categories through an external categorizer.
type CategoryService struct {
	client  Categorizer
	opts    CategoryOptions
	cache   *lru.Cache[string, models.CategoryResult]
	logger  *utils.Logger
	metrics *utils.Metrics
}

// NewCategoryService wires a categorizer. client may be nil when the service
// is not configured; backfills then leave catalogs unchanged.
func NewCategoryService(client Categorizer, opts CategoryOptions, logger *utils.Logger, metrics *utils.Metrics) (*CategoryService, error) {
	def := DefaultCategoryOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}

	cache, err := lru.New[string, models.CategoryResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("category cache: %w", err)
	}
	return &CategoryService{
		client:  client,
		opts:    opts,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Available reports whether a categorizer is configured.
func (s *CategoryService) Available() bool {
	return s != nil && s.client != nil
}

// Backfill returns a new catalog where rows without a category take the
// categorizer's label for their title. The input catalog is never modified.
// A failed batch leaves its rows uncategorised and does not stop the rest;
// the only error returned is ctx's, alongside whatever was filled so far.
func (s *CategoryService) Backfill(ctx context.Context, catalog *models.Catalog) (*models.Catalog, BackfillReport, error) {
	report := BackfillReport{}
	if catalog == nil {
		catalog = models.EmptyCatalog()
	}

	pending := utils.NewStringSet()
	for _, p := range catalog.Products() {
		if p.Category == nil {
			pending.Add(p.Title)
		}
	}
	report.Titles = pending.Size()
	if report.Titles == 0 {
		report.CatalogID = catalog.ID()
		return catalog, report, nil
	}
	if !s.Available() {
		s.logger.Warn("[categorizer] Service not configured, %d titles stay %s", report.Titles, models.Uncategorized)
		report.Uncategorized = report.Titles
		report.CatalogID = catalog.ID()
		return catalog, report, nil
	}

	labels := make(map[string]models.CategoryResult, report.Titles)
	var toAsk []string
	for _, title := range pending.Values() {
		if cached, ok := s.cache.Get(title); ok {
			labels[title] = cached
			report.CacheHits++
			continue
		}
		toAsk = append(toAsk, title)
	}
	s.metrics.AddCacheHits(report.CacheHits)

	var mu sync.Mutex
	pool := utils.NewWorkerPool(s.opts.Concurrency, s.opts.RateLimitMs)
	retry := &utils.RetryConfig{
		MaxAttempts: s.opts.MaxRetries,
		BaseDelay:   s.opts.RetryDelay,
		Logger:      s.logger,
		OnRetry:     s.metrics.IncRetry,
	}

	batches := utils.SubmitBatches(pool, toAsk, s.opts.BatchSize, func(batchNo int, batch []string) {
		results, err := s.runBatch(ctx, retry, batchNo, batch)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.FailedBatches++
			s.logger.Warn("[categorizer] Batch %d (%d titles) left uncategorised: %v", batchNo, len(batch), err)
			return
		}
		for i, title := range batch {
			labels[title] = results[i]
		}
	})
	pool.Wait()
	report.Batches = batches

	for _, title := range pending.Values() {
		if label, ok := labels[title]; ok && !label.IsUncategorized() {
			report.Categorized++
		} else {
			report.Uncategorized++
		}
	}

	out := catalog.WithCategories(labels)
	report.CatalogID = out.ID()
	s.logger.Info("[categorizer] Backfill done: %d titles, %d categorised, %d cached, %d/%d batches failed",
		report.Titles, report.Categorized, report.CacheHits, report.FailedBatches, report.Batches)

	return out, report, ctx.Err()
}

// runBatch asks the categorizer about one batch, retrying failures. Missing
// answers are padded with Uncategorized.
func (s *CategoryService) runBatch(ctx context.Context, retry *utils.RetryConfig, batchNo int, titles []string) ([]models.CategoryResult, error) {
	if err := ctx.Err(); err != nil {
		s.metrics.IncBatch("failed")
		return nil, err
	}

	started := time.Now()
	var results []models.CategoryResult
	err := retry.Do(ctx, fmt.Sprintf("categorize batch %d", batchNo), func(ctx context.Context) error {
		var err error
		results, err = s.client.Categorize(ctx, titles)
		return err
	})
	s.metrics.ObserveBatch(time.Since(started))
	if err != nil {
		s.metrics.IncBatch("failed")
		return nil, err
	}
	s.metrics.IncBatch("ok")

	out := make([]models.CategoryResult, len(titles))
	for i, title := range titles {
		if i < len(results) {
			out[i] = results[i]
		}
		if out[i].IsUncategorized() {
			out[i] = models.CategoryResult{Main: models.Uncategorized}
			continue
		}
		s.cache.Add(title, out[i])
	}
	return out, nil
}
