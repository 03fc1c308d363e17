package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-search/internal/common/logger"
	"catalog-search/internal/common/observability"
)

type RouterConfig struct {
	SearchHandler *SearchHandler
	Logger        logger.Logger
	Observability *observability.Observability
	// ExposeMetrics mounts the Prometheus scrape endpoint at /metrics.
	ExposeMetrics bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AttachRequestID())
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Metrics(cfg.Observability))

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	store := r.Group("/store")
	{
		if cfg.SearchHandler != nil {
			store.GET("/catalog/search", cfg.SearchHandler.Search)
			store.POST("/catalog/search", cfg.SearchHandler.SearchBody)
		}
	}

	return r
}
