package scraper

import "github.com/use-agent/bestseller/models"

// Result is what one browser extraction produced.
type Result struct {
	*models.ExtractionResult

	// FinalURL is the page location after redirects.
	FinalURL string
}
