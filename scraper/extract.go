package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
	"github.com/ysmood/gson"
)

// Extract loads req.URL in a pooled tab and runs the best-seller extraction.
// req must have had Defaults applied.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard      – hard deadline on the entire operation
//  2. Acquire page       – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup     – about:blank + return to pool on every exit path
//  4. Stealth injection  – must precede navigation to take effect
//  5. Extra headers      – sent with the navigation request
//  6. Hijack mount       – block configured resource types and ad hosts
//  7. Extract            – navigate, wait, read, capture
//
// The cleanup in step 3 uses the page without the request context, so it
// still runs after the deadline has passed.
func (s *Scraper) Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, s.clampTimeout(req.Timeout))
	defer cancel()

	log := slog.Default().With("url", req.URL, "engine", "rod")

	// ── 2. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}

	// ── 3. Cleanup: blank the tab and hand it back ───────────────────
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			log.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if req.UseStealth() {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			log.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// ── 5. Extra headers ──────────────────────────────────────────────
	if len(req.Headers) > 0 {
		if hdrErr := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}).Call(page); hdrErr != nil {
			log.Warn("failed to set extra headers", "error", hdrErr)
		}
	}

	// ── 6. Hijack router ──────────────────────────────────────────────
	if router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds); router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 7. Extract ────────────────────────────────────────────────────
	opts := extractor.OptionsFromRequest(req, log)
	res, err := extractor.Run(ctx, &rodPage{page: page}, req.URL, opts)
	if err != nil {
		return nil, err
	}

	finalURL := evalStringOrEmpty(page.Context(ctx), `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &Result{ExtractionResult: res, FinalURL: finalURL}, nil
}

// clampTimeout converts a request timeout in seconds, applying the
// configured default and ceiling.
func (s *Scraper) clampTimeout(seconds int) time.Duration {
	timeout := time.Duration(seconds) * time.Second
	if timeout <= 0 {
		timeout = s.scraperCfg.DefaultTimeout
	}
	if s.scraperCfg.MaxTimeout > 0 && timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	return timeout
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw rod errors into typed ScrapeErrors. fallback is
// the code used when the error is not a context error.
func categorizeError(err error, fallback, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		if fallback == models.ErrCodeSelectorTimeout {
			return models.NewScrapeError(models.ErrCodeSelectorTimeout, msg, err)
		}
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(fallback, msg, err)
	}
}
