package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/filmreview/api/handler"
	"github.com/use-agent/filmreview/api/middleware"
	"github.com/use-agent/filmreview/cache"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/webhook"
)

// Deps are the services behind the routes.
type Deps struct {
	Extractor   handler.Extractor
	Searcher    handler.FilmSearcher
	MultiSource handler.MultiSourcer
	Pool        handler.PoolStatser
	Reviews     handler.ReviewLister
	Cache       *cache.Cache
	Webhooks    *webhook.Sender
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(d Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(d.Pool, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/stats", handler.Stats(d.Pool, d.Reviews, d.Cache, startTime))

	// Extraction
	protected.POST("/extract", handler.Extract(d.Extractor, d.Cache))
	protected.POST("/extract/batch", handler.Batch(d.Extractor, cfg.Batch, d.Webhooks))
	protected.POST("/extract/multi", handler.MultiSource(d.MultiSource))

	// Film lookup
	protected.GET("/search", handler.SearchFilms(d.Searcher))
	protected.POST("/search", handler.SearchFilms(d.Searcher))

	// Stored reviews
	protected.GET("/reviews", handler.ListReviews(d.Reviews))
	protected.GET("/reviews/:filename", handler.GetReview(d.Reviews))

	return r
}
