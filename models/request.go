package models

import (
	"time"

	"github.com/use-agent/bestseller/config"
)

// ExtractRequest is the payload for POST /api/v1/extract. Every field is
// optional; zero values are filled from the configured target.
type ExtractRequest struct {
	// URL is the page to extract from. Default: the configured target URL.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// ContainerSelector marks the start of the best-seller section.
	ContainerSelector string `json:"container_selector,omitempty"`

	// ListSelector is queried inside the container for the product list.
	ListSelector string `json:"list_selector,omitempty"`

	// ItemSelector is queried inside the list for one node per product.
	ItemSelector string `json:"item_selector,omitempty"`

	// ContainerTimeoutMs bounds the wait for the container to become visible.
	// Default: 10000.
	ContainerTimeoutMs int `json:"container_timeout_ms,omitempty" binding:"omitempty,min=1,max=120000"`

	// NavigationTimeoutMs bounds page navigation. Default: 60000.
	NavigationTimeoutMs int `json:"navigation_timeout_ms,omitempty" binding:"omitempty,min=1,max=180000"`

	// Timeout is the overall budget in seconds for the whole operation.
	// Default: 90. Capped by the server's MaxTimeout.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// FetchMode is "browser" (headless Chrome), "http" (static HTML only)
	// or "auto" (static first, browser when the container is missing).
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// OutputFormat controls the optional Content field of the response.
	// "none" (default), "text" (numbered items) or "markdown" (container).
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=none text markdown"`

	// Stealth enables anti-bot-detection evasions.
	Stealth *bool `json:"stealth,omitempty"`

	// Headers are extra HTTP headers sent with the navigation.
	Headers map[string]string `json:"headers,omitempty"`
}

// Defaults fills unset fields from the configuration.
func (r *ExtractRequest) Defaults(cfg *config.Config) {
	if r.URL == "" {
		r.URL = cfg.Target.URL
	}
	if r.ContainerSelector == "" {
		r.ContainerSelector = cfg.Target.ContainerSelector
	}
	if r.ListSelector == "" {
		r.ListSelector = cfg.Target.ListSelector
	}
	if r.ItemSelector == "" {
		r.ItemSelector = cfg.Target.ItemSelector
	}
	if r.ContainerTimeoutMs == 0 {
		r.ContainerTimeoutMs = int(cfg.Target.ContainerTimeout.Milliseconds())
	}
	if r.NavigationTimeoutMs == 0 {
		r.NavigationTimeoutMs = int(cfg.Target.NavigationTimeout.Milliseconds())
	}
	if r.Timeout == 0 {
		r.Timeout = int(cfg.Scraper.DefaultTimeout.Seconds())
	}
	if r.FetchMode == "" {
		r.FetchMode = cfg.Engine.FetchMode
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "none"
	}
	if r.Stealth == nil {
		s := cfg.Scraper.Stealth
		r.Stealth = &s
	}
}

// ContainerTimeout returns ContainerTimeoutMs as a duration.
func (r *ExtractRequest) ContainerTimeout() time.Duration {
	return time.Duration(r.ContainerTimeoutMs) * time.Millisecond
}

// NavigationTimeout returns NavigationTimeoutMs as a duration.
func (r *ExtractRequest) NavigationTimeout() time.Duration {
	return time.Duration(r.NavigationTimeoutMs) * time.Millisecond
}

// UseStealth reports whether stealth injection was requested.
func (r *ExtractRequest) UseStealth() bool {
	return r.Stealth != nil && *r.Stealth
}
