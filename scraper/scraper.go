package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/models"
)

// Scraper manages the browser lifecycle and the page pool.
// It is safe for concurrent use.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	activePages atomic.Int32
	startTime   time.Time

	// remote is set when the browser was not launched by us. Close then
	// only drops the connection via disconnect.
	remote     bool
	disconnect context.CancelFunc
}

// NewScraper connects to browserCfg.ControlURL when set, otherwise launches
// a headless Chromium, and initialises the reusable page pool.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	s := &Scraper{
		pagePool:   rod.NewPagePool(browserCfg.MaxPages),
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		startTime:  time.Now(),
	}

	controlURL := browserCfg.ControlURL
	if controlURL != "" {
		s.remote = true
		slog.Info("connecting to remote browser", "controlURL", controlURL)
	} else {
		var err error
		if controlURL, err = launch(browserCfg); err != nil {
			return nil, err
		}
		slog.Info("browser launched", "controlURL", controlURL)
	}

	connCtx, disconnect := context.WithCancel(context.Background())
	browser := rod.New().ControlURL(controlURL).Context(connCtx)
	if err := browser.Connect(); err != nil {
		disconnect()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}
	s.browser = browser
	s.disconnect = disconnect

	slog.Info("page pool created", "maxPages", browserCfg.MaxPages, "remote", s.remote)
	return s, nil
}

func launch(cfg config.BrowserConfig) (string, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("lang"), "zh-TW")

	controlURL, err := l.Launch()
	if err != nil {
		return "", models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	return controlURL, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
		Remote:      s.remote,
	}
}

// Uptime reports how long the scraper has been running.
func (s *Scraper) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Close drains the page pool. A launched browser is killed; a remote one
// is only disconnected from.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})

	if s.remote {
		s.disconnect()
		slog.Info("scraper shutdown complete: disconnected from remote browser")
		return
	}

	if err := s.browser.Close(); err != nil {
		slog.Warn("failed to close browser", "error", err)
	}
	s.disconnect()
	slog.Info("scraper shutdown complete")
}
