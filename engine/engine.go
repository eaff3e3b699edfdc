// Package engine selects how a page is fetched before extraction: a static
// HTTP GET, a headless browser, or a staged race between the two.
package engine

import (
	"context"

	"github.com/use-agent/bestseller/models"
)

// Fetch modes accepted in ExtractRequest.FetchMode.
const (
	ModeBrowser = "browser"
	ModeHTTP    = "http"
	ModeAuto    = "auto"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http", "rod", "rod-stealth").
	Name() string

	// Extract fetches req.URL and runs the best-seller extraction on it.
	Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error)
}

// Result is the output of one engine run.
type Result struct {
	*models.ExtractionResult

	// FinalURL is the page location after redirects.
	FinalURL string

	// EngineName is the engine that produced this result.
	EngineName string
}
