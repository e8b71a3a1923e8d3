package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-insights/models"
	"catalog-insights/utils"
)

// fakeCategorizer labels each title by its first word and fails any batch
// containing a title listed in failOn.
type fakeCategorizer struct {
	mu     sync.Mutex
	calls  [][]string
	failOn map[string]bool
	short  bool
}

func (f *fakeCategorizer) Categorize(_ context.Context, titles []string) ([]models.CategoryResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), titles...))
	f.mu.Unlock()

	for _, title := range titles {
		if f.failOn[title] {
			return nil, errors.New("upstream unavailable")
		}
	}
	out := make([]models.CategoryResult, 0, len(titles))
	for _, title := range titles {
		word := strings.Fields(title)[0]
		if word == "Mystery" {
			out = append(out, models.CategoryResult{Main: models.Uncategorized})
			continue
		}
		out = append(out, models.CategoryResult{Main: word, Sub: "General"})
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeCategorizer) titlesAsked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += len(c)
	}
	return n
}

func fastOptions(batch int) CategoryOptions {
	return CategoryOptions{
		BatchSize:   batch,
		Concurrency: 2,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		CacheSize:   16,
	}
}

func uncategorizedCatalog() *models.Catalog {
	return models.NewCatalog("standard", nil, []models.Product{
		{Brand: "A", Title: "Shoes Runner", Price: 10},
		{Brand: "A", Title: "Bags Tote", Price: 20, Category: strPtr("Bags")},
		{Brand: "B", Title: "Hats Beanie", Price: 5},
		{Brand: "B", Title: "Shoes Runner", Price: 12},
		{Brand: "B", Title: "Mystery Box", Price: 7},
	})
}

func TestBackfillFillsMissingCategories(t *testing.T) {
	client := &fakeCategorizer{}
	svc, err := NewCategoryService(client, fastOptions(10), utils.NewNopLogger(), nil)
	require.NoError(t, err)

	input := uncategorizedCatalog()
	before := input.Products()

	out, report, err := svc.Backfill(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, before, input.Products(), "input catalog must not change")
	assert.NotEqual(t, input.ID(), out.ID())
	assert.Equal(t, out.ID(), report.CatalogID)

	assert.Equal(t, 3, report.Titles, "duplicate titles are asked once")
	assert.Equal(t, 2, report.Categorized)
	assert.Equal(t, 1, report.Uncategorized)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 3, client.titlesAsked())

	rows := out.Products()
	require.NotNil(t, rows[0].Category)
	assert.Equal(t, "Shoes", *rows[0].Category)
	assert.Equal(t, "General", rows[0].Subcategory)
	assert.Equal(t, "Bags", *rows[1].Category)
	assert.Equal(t, "Hats", *rows[2].Category)
	assert.Equal(t, "Shoes", *rows[3].Category)
	assert.Nil(t, rows[4].Category)
	assert.True(t, out.Has(models.FieldCategory))
}

func TestBackfillFailedBatchLeavesRowsUncategorized(t *testing.T) {
	client := &fakeCategorizer{failOn: map[string]bool{"Hats Beanie": true}}
	metrics := utils.NewMetrics()
	svc, err := NewCategoryService(client, fastOptions(1), utils.NewNopLogger(), metrics)
	require.NoError(t, err)

	out, report, err := svc.Backfill(context.Background(), uncategorizedCatalog())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 1, report.FailedBatches)
	assert.Equal(t, 1, report.Categorized)

	for _, p := range out.Products() {
		if p.Title == "Hats Beanie" {
			assert.Nil(t, p.Category)
		}
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CategorizeBatches.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CategorizeBatches.WithLabelValues("ok")))
}

func TestBackfillUsesCache(t *testing.T) {
	client := &fakeCategorizer{}
	metrics := utils.NewMetrics()
	svc, err := NewCategoryService(client, fastOptions(10), utils.NewNopLogger(), metrics)
	require.NoError(t, err)

	_, _, err = svc.Backfill(context.Background(), uncategorizedCatalog())
	require.NoError(t, err)
	asked := client.titlesAsked()

	_, report, err := svc.Backfill(context.Background(), uncategorizedCatalog())
	require.NoError(t, err)

	assert.Equal(t, 2, report.CacheHits)
	// only the title the service could not place is asked again
	assert.Equal(t, asked+1, client.titlesAsked())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CategoryCacheHits))
}

func TestBackfillPadsShortAnswers(t *testing.T) {
	client := &fakeCategorizer{short: true}
	svc, err := NewCategoryService(client, fastOptions(10), utils.NewNopLogger(), nil)
	require.NoError(t, err)

	catalog := models.NewCatalog("standard", nil, []models.Product{
		{Brand: "A", Title: "Shoes One", Price: 1},
		{Brand: "A", Title: "Bags Two", Price: 1},
	})
	out, report, err := svc.Backfill(context.Background(), catalog)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Categorized)
	assert.Equal(t, 1, report.Uncategorized)
	assert.Nil(t, out.Products()[1].Category)
}

func TestBackfillWithoutClient(t *testing.T) {
	svc, err := NewCategoryService(nil, CategoryOptions{}, utils.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.False(t, svc.Available())

	input := uncategorizedCatalog()
	out, report, err := svc.Backfill(context.Background(), input)
	require.NoError(t, err)
	assert.Same(t, input, out)
	assert.Equal(t, 3, report.Uncategorized)
}

func TestBackfillNothingToDo(t *testing.T) {
	client := &fakeCategorizer{}
	svc, err := NewCategoryService(client, fastOptions(10), utils.NewNopLogger(), nil)
	require.NoError(t, err)

	input := models.NewCatalog("standard", nil, []models.Product{
		{Brand: "A", Title: "Bags Tote", Price: 20, Category: strPtr("Bags")},
	})
	out, report, err := svc.Backfill(context.Background(), input)
	require.NoError(t, err)
	assert.Same(t, input, out)
	assert.Equal(t, 0, report.Titles)
	assert.Equal(t, 0, client.titlesAsked())
}

func TestBackfillCancelled(t *testing.T) {
	client := &fakeCategorizer{}
	svc, err := NewCategoryService(client, fastOptions(1), utils.NewNopLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, report, err := svc.Backfill(ctx, uncategorizedCatalog())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.Equal(t, report.Batches, report.FailedBatches)
	assert.Equal(t, 0, client.titlesAsked())
}
