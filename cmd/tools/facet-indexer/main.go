// cmd/tools/facet-indexer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-search/internal/catalog/facets"
	"catalog-search/internal/catalog/index"
	"catalog-search/internal/catalog/reindex"
	"catalog-search/internal/catalog/store"
	"catalog-search/internal/common/config"
	"catalog-search/internal/common/database"
	"catalog-search/internal/common/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to configs/config.yaml lookup)")
	batchSize := flag.Int("batch", reindex.DefaultBatchSize, "Products loaded and indexed per bulk request")
	ensureIndex := flag.Bool("ensure-index", false, "Create the index with the facet mapping if it does not exist")
	timeout := flag.Duration("timeout", 30*time.Minute, "Abort the run after this long")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error opening postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error creating elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	if err := esClient.Ping(ctx); err != nil {
		fmt.Printf("Error connecting to elasticsearch: %v\n", err)
		os.Exit(1)
	}

	searchIndex := index.NewClient(esClient.Client, esClient.Index, log)
	if *ensureIndex {
		created, err := searchIndex.EnsureIndex(ctx)
		if err != nil {
			fmt.Printf("Error ensuring index %s: %v\n", esClient.Index, err)
			os.Exit(1)
		}
		if created {
			fmt.Printf("Created index: %s\n", esClient.Index)
		}
	}

	builder := facets.NewBuilder(facets.WithIngredientTaxonomy(cfg.Catalog.IngredientPrefix))
	r := reindex.New(store.New(pg.DB, log), searchIndex, builder, *batchSize, log)

	start := time.Now()
	stats, err := r.Run(ctx)
	if err != nil {
		fmt.Printf("Error reindexing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Indexed %d/%d products in %d batches (%d failed) in %s\n",
		stats.Indexed, stats.Products, stats.Batches, stats.Failed, time.Since(start).Round(time.Millisecond))
	for _, e := range stats.Errors {
		fmt.Printf("  - %s\n", e)
	}
	if stats.Failed > 0 {
		os.Exit(2)
	}
}
