package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/models"
	"github.com/use-agent/bestseller/render"
	"github.com/use-agent/bestseller/snapshot"
)

// Extractor runs one extraction. *engine.Service implements it.
type Extractor interface {
	Extract(ctx context.Context, req *models.ExtractRequest) (*engine.Result, error)
}

// Extract returns a handler for POST /api/v1/extract.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults. An empty body is valid.
//  2. Extractor.Extract → items + markup      (records extraction_ms)
//  3. Links, layout fingerprint and content   (records render_ms)
//  4. Fill Timing, return 200.
//
// A run that only hit recoverable failures still answers 200: the
// warnings travel in result.warnings.
func Extract(ex Extractor, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), models.TimingInfo{})
			return
		}
		req.Defaults(cfg)

		if err := snapshot.ValidateSelectors(req.ContainerSelector, req.ListSelector, req.ItemSelector); err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		// ── 2. Extract ──────────────────────────────────────────────
		extractStart := time.Now()
		result, err := ex.Extract(c.Request.Context(), &req)
		extractionMs := time.Since(extractStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				ExtractionMs: extractionMs,
			})
			return
		}

		// ── 3. Render ───────────────────────────────────────────────
		renderStart := time.Now()
		finalURL := result.FinalURL
		if finalURL == "" {
			finalURL = req.URL
		}
		resp := render.Response(result.ExtractionResult, finalURL, result.EngineName, req.OutputFormat)
		renderMs := time.Since(renderStart).Milliseconds()

		// ── 4. Timing and respond ───────────────────────────────────
		resp.Timing = models.TimingInfo{
			TotalMs:      time.Since(totalStart).Milliseconds(),
			ExtractionMs: extractionMs,
			RenderMs:     renderMs,
		}
		c.JSON(http.StatusOK, resp)
	}
}
