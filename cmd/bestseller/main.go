// Command bestseller extracts the PChome 24h best-seller list once and
// prints it. Logs go to stderr; stdout carries only the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
	"github.com/use-agent/bestseller/scraper"
	"github.com/use-agent/bestseller/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code: 0 on success (partial results
// included), 1 on a fatal extraction error, 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("bestseller", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		targetURL        string
		snapshotPath     string
		mode             string
		format           string
		containerSel     string
		listSel          string
		itemSel          string
		containerTimeout time.Duration
		navTimeout       time.Duration
		stealth          bool
	)
	fs.StringVar(&targetURL, "url", cfg.Target.URL, "Page to extract from (base URL for links in -snapshot mode)")
	fs.StringVar(&snapshotPath, "snapshot", "", "Extract from a saved HTML file instead of fetching")
	fs.StringVar(&mode, "mode", cfg.Engine.FetchMode, "Fetch mode: browser, http or auto")
	fs.StringVar(&format, "format", formatText, "Output: text, json or markdown")
	fs.StringVar(&containerSel, "container", cfg.Target.ContainerSelector, "Container selector")
	fs.StringVar(&listSel, "list", cfg.Target.ListSelector, "List selector, queried inside the container")
	fs.StringVar(&itemSel, "item", cfg.Target.ItemSelector, "Item selector, queried inside the list")
	fs.DurationVar(&containerTimeout, "container-timeout", cfg.Target.ContainerTimeout, "How long to wait for the container to become visible")
	fs.DurationVar(&navTimeout, "nav-timeout", cfg.Target.NavigationTimeout, "Navigation timeout")
	fs.BoolVar(&stealth, "stealth", cfg.Scraper.Stealth, "Inject anti-bot-detection evasions")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if !validFormat(format) {
		fmt.Fprintf(stderr, "unknown -format %q: want text, json or markdown\n", format)
		return 2
	}

	logger := cfg.Log.NewLogger(stderr)
	slog.SetDefault(logger)

	req := &models.ExtractRequest{
		URL:                 targetURL,
		ContainerSelector:   containerSel,
		ListSelector:        listSel,
		ItemSelector:        itemSel,
		ContainerTimeoutMs:  int(containerTimeout.Milliseconds()),
		NavigationTimeoutMs: int(navTimeout.Milliseconds()),
		FetchMode:           mode,
		Stealth:             &stealth,
	}
	req.Defaults(cfg)

	if err := snapshot.ValidateSelectors(req.ContainerSelector, req.ListSelector, req.ItemSelector); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var (
		res *engine.Result
		err error
	)
	if snapshotPath != "" {
		res, err = extractFile(ctx, snapshotPath, req, logger)
	} else {
		res, err = extractLive(ctx, cfg, req)
	}
	if err != nil {
		logger.Error("extraction failed", "url", req.URL, "error", err)
		return 1
	}

	if err := write(stdout, format, req, res); err != nil {
		logger.Error("failed to write output", "error", err)
		return 1
	}
	return 0
}

// extractFile runs the extraction over a saved page.
func extractFile(ctx context.Context, path string, req *models.ExtractRequest, logger *slog.Logger) (*engine.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "failed to read snapshot", err)
	}
	page, err := snapshot.New(string(raw))
	if err != nil {
		return nil, err
	}

	log := logger.With("snapshot", path)
	res, err := extractor.Extract(ctx, page, extractor.OptionsFromRequest(req, log))
	if err != nil {
		return nil, err
	}
	return &engine.Result{ExtractionResult: res, FinalURL: req.URL, EngineName: "snapshot"}, nil
}

// extractLive fetches req.URL. A browser is started only when the mode
// can use one.
func extractLive(ctx context.Context, cfg *config.Config, req *models.ExtractRequest) (*engine.Result, error) {
	if req.FetchMode == engine.ModeHTTP {
		return engine.NewStandardService(cfg.Engine, nil, nil).Extract(ctx, req)
	}

	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	svc := engine.NewStandardService(cfg.Engine, sc.RodEngine(false), sc.RodEngine(true))
	return svc.Extract(ctx, req)
}
