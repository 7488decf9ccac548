// Package app wires the extraction services from a Config. The server, the
// CLI and tests share it so every entry point runs the same pipeline.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/multisource"
	"github.com/use-agent/filmreview/scraper"
	"github.com/use-agent/filmreview/search"
	"github.com/use-agent/filmreview/store"
)

// hostMemoryTTL is how long a winning engine is remembered per host.
const hostMemoryTTL = 24 * time.Hour

// App holds the long-lived services. Nothing is launched until the first
// extraction or an explicit Pool.Warm.
type App struct {
	Config    *config.Config
	Pool      *engine.BrowserPool
	Extractor *scraper.Extractor
	Collector *multisource.Collector
	Store     *store.Store
}

// New builds the services for cfg.
func New(cfg *config.Config) *App {
	ua := cfg.Browser.UserAgent

	browserClient := engine.NewChromeClient(cfg.Browser.Proxy, cfg.Extractor.NavigationTimeout)
	pool := engine.NewBrowserPool(engine.PoolConfig{
		Max:         cfg.Pool.Max,
		Min:         cfg.Pool.Min,
		IdleTimeout: cfg.Pool.IdleTimeout,
	}, scraper.NewBrowser(cfg.Browser, browserClient))

	st := store.New(cfg.Store.ReviewsDir)
	extractor := scraper.NewExtractor(pool, cfg.Extractor, ua, st)

	renderer := scraper.NewRenderer(pool, ua, cfg.Extractor.SettleDelay)
	engines := []engine.Engine{
		engine.NewHTTPEngine(engine.NewChromeClient(cfg.Browser.Proxy, cfg.MultiSource.HTTPTimeout), ua),
		engine.NewRodEngine(renderer.Render),
	}
	dispatcher := engine.NewDispatcher(engines, cfg.MultiSource.EscalationDelays,
		engine.NewHostMemory(hostMemoryTTL), multisource.AcceptDocument)

	var searcher multisource.Searcher
	if cfg.MultiSource.ExaAPIKey != "" {
		searcher = search.NewClient(&http.Client{Timeout: 15 * time.Second},
			cfg.MultiSource.ExaBaseURL, cfg.MultiSource.ExaAPIKey, cfg.MultiSource.ResultsPerQuery)
	} else {
		slog.Info("search API key not set, multi-source mode accepts article URLs only")
	}

	return &App{
		Config:    cfg,
		Pool:      pool,
		Extractor: extractor,
		Collector: multisource.NewCollector(cfg.MultiSource, dispatcher, searcher),
		Store:     st,
	}
}

// Close shuts the browser pool down.
func (a *App) Close() error {
	return a.Pool.Shutdown()
}
