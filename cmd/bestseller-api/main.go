package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/bestseller/api"
	"github.com/use-agent/bestseller/api/handler"
	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))
	slog.Info("bestseller-api starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"fetchMode", cfg.Engine.FetchMode,
		"target", cfg.Target.URL,
	)

	// ── 3. Initialise scraper (launches or connects to a browser) ────
	// A static-only deployment runs without Chrome; browser requests then
	// fail with INVALID_INPUT.
	var (
		browser, escalation engine.Engine
		pool                handler.PoolReporter
	)
	if cfg.Engine.FetchMode != engine.ModeHTTP {
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			slog.Error("failed to initialise scraper", "error", err)
			os.Exit(1)
		}
		defer sc.Close()

		browser = sc.RodEngine(false)
		escalation = sc.RodEngine(true)
		pool = sc
	}

	// ── 4. Engines ──────────────────────────────────────────────────
	svc := engine.NewStandardService(cfg.Engine, browser, escalation)
	slog.Info("engines ready", "browser", browser != nil, "delays", cfg.Engine.EscalationDelays)

	// ── 5. Setup router ─────────────────────────────────────────────
	routerCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()
	router := api.NewRouter(routerCtx, svc, pool, cfg, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		slog.Error("HTTP server error", "error", err)
	}

	// Give in-flight requests 10 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sc.Close() runs via defer and drains the page pool.
	slog.Info("bestseller-api stopped")
}
