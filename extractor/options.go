package extractor

import (
	"log/slog"
	"time"

	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/models"
)

// Defaults used when an Options field is left zero.
const (
	DefaultContainerSelector = "#bestSellers"
	DefaultListSelector      = "ul.c-listInfoGrid__list"
	DefaultItemSelector      = "li"
	DefaultContainerTimeout  = 10 * time.Second
	DefaultNavigationTimeout = 60 * time.Second
	DefaultPreviewLen        = 120
)

// Options configures one extraction.
type Options struct {
	ContainerSelector string
	ListSelector      string
	ItemSelector      string

	ContainerTimeout  time.Duration
	NavigationTimeout time.Duration

	// PreviewLen caps the per-item preview written to the log, in runes.
	PreviewLen int

	// Logger receives the progress and warning lines. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options for the PChome best-seller block.
func DefaultOptions() Options {
	return Options{
		ContainerSelector: DefaultContainerSelector,
		ListSelector:      DefaultListSelector,
		ItemSelector:      DefaultItemSelector,
		ContainerTimeout:  DefaultContainerTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		PreviewLen:        DefaultPreviewLen,
	}
}

// OptionsFromConfig maps the configured target onto Options.
func OptionsFromConfig(t config.TargetConfig) Options {
	return Options{
		ContainerSelector: t.ContainerSelector,
		ListSelector:      t.ListSelector,
		ItemSelector:      t.ItemSelector,
		ContainerTimeout:  t.ContainerTimeout,
		NavigationTimeout: t.NavigationTimeout,
	}.withDefaults()
}

// OptionsFromRequest maps an API request onto Options. The request is
// expected to have had Defaults applied.
func OptionsFromRequest(req *models.ExtractRequest, logger *slog.Logger) Options {
	return Options{
		ContainerSelector: req.ContainerSelector,
		ListSelector:      req.ListSelector,
		ItemSelector:      req.ItemSelector,
		ContainerTimeout:  req.ContainerTimeout(),
		NavigationTimeout: req.NavigationTimeout(),
		Logger:            logger,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ContainerSelector == "" {
		o.ContainerSelector = d.ContainerSelector
	}
	if o.ListSelector == "" {
		o.ListSelector = d.ListSelector
	}
	if o.ItemSelector == "" {
		o.ItemSelector = d.ItemSelector
	}
	if o.ContainerTimeout <= 0 {
		o.ContainerTimeout = d.ContainerTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = d.NavigationTimeout
	}
	if o.PreviewLen <= 0 {
		o.PreviewLen = d.PreviewLen
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
