// cmd/catalog-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog-search/internal/api"
	"catalog-search/internal/catalog/cache"
	"catalog-search/internal/catalog/index"
	"catalog-search/internal/catalog/sizes"
	"catalog-search/internal/catalog/store"
	"catalog-search/internal/catalog/strategy"
	"catalog-search/internal/common/config"
	"catalog-search/internal/common/database"
	commonhttp "catalog-search/internal/common/http"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/common/observability"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting catalog server...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis (optional shared id-list tier) ---
	var engineOpts []strategy.Option
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		engineOpts = append(engineOpts, strategy.WithSharedStore(
			sizes.NewRedisListStore(rdb.Client, config.GetDuration(cfg.Catalog.SharedCacheTTL)),
		))
		zapLog.Info("Redis connected successfully")
	}

	// --- Collaborators ---
	catalogStore := store.New(pg.DB, log)
	searchIndex := index.NewClient(esClient.Client, esClient.Index, log)

	lookupClient := commonhttp.NewClient(config.GetDuration(cfg.AttributeLookup.Timeout))
	if cfg.AttributeLookup.APIKey != "" {
		lookupClient.WithHeader("Authorization", "Bearer "+cfg.AttributeLookup.APIKey)
	}
	lookup := sizes.NewLookup(cfg.AttributeLookup.BaseURL, lookupClient, log)

	cacheOpts := []cache.Option{
		cache.WithTTL(config.GetDuration(cfg.Catalog.CacheTTL)),
		cache.WithMaxEntries(cfg.Catalog.CacheMaxEntries),
	}
	sizeCache := cache.New[[]string]("size_ids", cacheOpts...)
	textCache := cache.New[[]string]("text_ids", cacheOpts...)

	engine := strategy.NewEngine(searchIndex, catalogStore, lookup, sizeCache, textCache, log, engineOpts...)

	handler := api.NewSearchHandler(engine, catalogStore, searchIndex, catalogStore, catalogStore, api.HandlerConfig{
		DefaultLimit:       cfg.Catalog.DefaultLimit,
		MaxLimit:           cfg.Catalog.MaxLimit,
		RequestTimeout:     config.GetDuration(cfg.Server.RequestTimeout),
		IngredientTaxonomy: cfg.Catalog.IngredientPrefix,
		LabelLanguage:      cfg.Catalog.LabelLanguage,
	}, log)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		SearchHandler: handler,
		Logger:        log,
		Observability: obs,
		ExposeMetrics: true,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during HTTP shutdown", zap.Error(err))
	}

	zapLog.Info("Catalog server stopped")
}
