package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/filmreview/api"
	"github.com/use-agent/filmreview/app"
	"github.com/use-agent/filmreview/cache"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	app.InitLogger(cfg.Log, os.Stdout)
	slog.Info("filmreviewd starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"poolMax", cfg.Pool.Max,
		"reviewsDir", cfg.Store.ReviewsDir,
	)

	// ── 3. Wire pool, extractor and collector ───────────────────────
	a := app.New(cfg)
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("browser pool shutdown", "error", err)
		}
	}()

	// ── 3b. Optionally launch the minimum number of browsers ───────
	if cfg.Pool.Prewarm {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := a.Pool.Warm(ctx); err != nil {
			slog.Warn("browser prewarm failed", "error", err)
		} else {
			slog.Info("browser pool prewarmed", "instances", a.Pool.Stats().Total)
		}
		cancel()
	}

	// ── 4. Initialise cache and webhook sender ─────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Close()

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(api.Deps{
		Extractor:   a.Extractor,
		Searcher:    a.Extractor,
		MultiSource: a.Collector,
		Pool:        a.Pool,
		Reviews:     a.Store,
		Cache:       cc,
		Webhooks:    webhook.NewSender(),
	}, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Extractions hold a browser for up to the navigation timeout plus the
	// settle delay.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extractor.NavigationTimeout+cfg.Extractor.SettleDelay)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("filmreviewd stopped")
}
