package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-insights/api"
	"catalog-insights/categorizer"
	"catalog-insights/config"
	"catalog-insights/models"
	"catalog-insights/services"
	"catalog-insights/storage"
	"catalog-insights/utils"
)

func main() {
	serve := flag.Bool("serve", false, "Serve the dashboard API instead of printing a report")
	categorize := flag.Bool("categorize", false, "Backfill missing categories before reporting")
	exportPath := flag.String("export", "", "Write the filtered catalog to this CSV path")
	category := flag.String("category", models.AllValues, "Only include this category")
	marketplace := flag.String("marketplace", models.AllValues, "Only include this marketplace")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Env)
	defer logger.Sync()
	metrics := utils.NewMetrics()

	logger.Info("=== Catalog Insights starting ===")
	logger.Info("Config: source=%s (%s) | variant=%s | our=%v | competitors=%v",
		cfg.Source.Path, cfg.Source.Kind, cfg.Source.Variant, cfg.OurBrands, cfg.CompetitorBrands)

	variant, err := services.LookupVariant(cfg.Source.Variant)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	currency := cfg.Source.Currency
	if currency == "" {
		currency = variant.DefaultCurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := storage.NewSource(storage.SourceSpec{
		Kind:  cfg.Source.Kind,
		Path:  cfg.Source.Path,
		Sheet: cfg.Source.Sheet,
		DSN:   cfg.Source.DSN,
		Table: cfg.Source.Table,
	})
	if err != nil {
		logger.Error("Failed to open source: %v", err)
		os.Exit(1)
	}

	raw, err := source.Load(ctx)
	if err != nil {
		logger.Error("Failed to load source: %v", err)
		os.Exit(1)
	}
	logger.Info("Loaded %d raw rows with %d columns", len(raw.Rows), len(raw.OrderedColumns()))

	cleaner := services.NewCleaner(logger, metrics)
	catalog, diag, err := cleaner.BuildCatalog(raw, variant)
	if err != nil {
		var schemaErr *services.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Error("The source is missing required columns: %v", schemaErr.Missing)
			logger.Error("Columns found: %v", schemaErr.Found)
		} else {
			logger.Error("Failed to build catalog: %v", err)
		}
		os.Exit(1)
	}
	if catalog.Len() == 0 {
		logger.Warn("All %d rows were dropped during cleaning: %v", diag.RowsRead, diag.Dropped)
	}

	categories, err := newCategoryService(cfg, logger, metrics)
	if err != nil {
		logger.Error("Failed to set up categorizer: %v", err)
		os.Exit(1)
	}
	if *categorize {
		filled, report, err := categories.Backfill(ctx, catalog)
		if err != nil {
			logger.Warn("Category backfill interrupted: %v", err)
		}
		logger.Info("Categorised %d/%d titles", report.Categorized, report.Titles)
		catalog = filled
	}

	insights := services.NewInsightService(logger, metrics)

	if *serve {
		session := api.NewSession(catalog, diag)
		if err := runServer(ctx, cfg.HTTPAddr, api.NewHandler(session, insights, categories, metrics, logger, currency), logger); err != nil {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
		return
	}

	filters := models.FilterConfig{
		Brands:      append(append([]string(nil), cfg.OurBrands...), cfg.CompetitorBrands...),
		Category:    *category,
		Marketplace: *marketplace,
	}
	report := insights.Generate(catalog, filters, cfg.OurBrands, cfg.CompetitorBrands, currency)
	insights.Print(os.Stdout, report)

	path := *exportPath
	if path == "" {
		path = cfg.ExportPath
	}
	if path != "" {
		if err := export(path, services.ApplyFilters(catalog, filters)); err != nil {
			logger.Error("CSV export failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Filtered catalog saved to %s", path)
	}
}

func newCategoryService(cfg *config.Config, logger *utils.Logger, metrics *utils.Metrics) (*services.CategoryService, error) {
	var client services.Categorizer
	c, err := categorizer.NewClient(categorizer.Config{
		Endpoint: cfg.TextGen.URL,
		APIKey:   cfg.TextGen.APIKey,
		Model:    cfg.TextGen.Model,
		Timeout:  time.Duration(cfg.TextGen.TimeoutSeconds) * time.Second,
	})
	switch {
	case errors.Is(err, categorizer.ErrUnavailable):
		logger.Info("TEXTGEN_API_KEY not set, categories will not be backfilled")
	case err != nil:
		return nil, err
	default:
		client = c
	}

	return services.NewCategoryService(client, services.CategoryOptions{
		BatchSize:   cfg.Categorize.BatchSize,
		Concurrency: cfg.Categorize.Concurrency,
		RateLimitMs: cfg.Categorize.RateLimitMs,
		MaxRetries:  cfg.Categorize.MaxRetries,
		RetryDelay:  time.Duration(cfg.Categorize.RetryDelayMs) * time.Millisecond,
		CacheSize:   cfg.Categorize.CacheSize,
	}, logger, metrics)
}

func runServer(ctx context.Context, addr string, h *api.Handler, logger *utils.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed: %v", err)
		}
	}()

	logger.Info("Dashboard API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func export(path string, catalog *models.Catalog) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(catalog); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
