package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/bestseller/models"
)

// Run navigates the session to url and extracts from the loaded page.
// A navigation failure is fatal; everything after it degrades softly.
func Run(ctx context.Context, s Session, url string, opts Options) (*models.ExtractionResult, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	log.Info("navigating", "url", url, "timeout", opts.NavigationTimeout)
	if err := s.Navigate(ctx, url, opts.NavigationTimeout); err != nil {
		if models.HasCode(err, models.ErrCodeNavigation) || models.HasCode(err, models.ErrCodeTimeout) {
			return nil, err
		}
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "navigation to "+url+" failed", err)
	}

	return Extract(ctx, s, opts)
}

// Extract pulls the item list, the container markup and the page markup
// out of an already loaded page.
//
// Stages (numbered steps match the inline comments):
//
//  1. Container  – wait for the container to become visible, read its markup
//  2. List       – query the nested list inside the container
//  3. Items      – read each item's text, falling back to its markup
//  4. Page       – serialize the whole document
//
// Stages 1-3 never fail the call: a missing node is logged, recorded in
// Warnings, and leaves the corresponding fields empty. Only stage 4 is
// fatal, since PageHTML is the minimum output of a successful call.
// The page and every element are borrowed; none are retained or closed.
func Extract(ctx context.Context, page Page, opts Options) (*models.ExtractionResult, error) {
	opts = opts.withDefaults()
	x := &run{opts: opts, log: opts.Logger}

	result := &models.ExtractionResult{
		Items:    []string{},
		Warnings: []string{},
	}

	// ── 1–3. Structured extraction (recoverable) ─────────────────────
	if container, html, ok := x.container(ctx, page); ok {
		result.ContainerHTML = &html
		result.Items = x.items(ctx, container)
	}

	// ── 4. Whole-page capture (fatal on failure) ─────────────────────
	pageHTML, err := page.Content(ctx)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSerialization, "failed to capture page HTML", err)
	}
	x.log.Info("page captured", "length", len(pageHTML))

	result.PageHTML = pageHTML
	result.Warnings = append(result.Warnings, x.warnings...)
	return result, nil
}

// run carries the per-call state of Extract. It is never shared.
type run struct {
	opts     Options
	log      *slog.Logger
	warnings []string
}

func (x *run) warn(msg string, args ...any) {
	x.log.Warn(msg, args...)
	x.warnings = append(x.warnings, formatWarning(msg, args...))
}

// container runs stage 1.
func (x *run) container(ctx context.Context, page Page) (Element, string, bool) {
	sel := x.opts.ContainerSelector

	el, err := page.WaitForSelector(ctx, sel, x.opts.ContainerTimeout, Visible)
	if err != nil {
		x.warn("container not found, continuing with page capture only",
			"selector", sel, "timeout", x.opts.ContainerTimeout, "error", err)
		return nil, "", false
	}

	html, err := el.InnerHTML(ctx)
	if err != nil {
		x.warn("container markup unreadable, continuing with page capture only",
			"selector", sel, "error", err)
		return nil, "", false
	}

	x.log.Info("container found", "selector", sel, "length", len(html))
	return el, html, true
}

// items runs stages 2 and 3. It always returns a non-nil slice.
func (x *run) items(ctx context.Context, container Element) []string {
	items := []string{}

	list, found, err := container.QueryOne(ctx, x.opts.ListSelector)
	if err != nil {
		x.warn("list query failed", "selector", x.opts.ListSelector, "error", err)
		return items
	}
	if !found {
		x.warn("list not found in container", "selector", x.opts.ListSelector)
		return items
	}

	nodes, err := list.QueryAll(ctx, x.opts.ItemSelector)
	if err != nil {
		x.warn("item query failed", "selector", x.opts.ItemSelector, "error", err)
		return items
	}
	x.log.Info("list found", "selector", x.opts.ListSelector, "items", len(nodes))

	for i, node := range nodes {
		text := x.item(ctx, i+1, node)
		items = append(items, text)
		x.log.Info("item", "index", i+1, "preview", Preview(text, x.opts.PreviewLen))
	}
	return items
}

// item reads one node. Its failures never abort the enumeration.
func (x *run) item(ctx context.Context, index int, node Element) string {
	text, err := node.InnerText(ctx)
	if err == nil {
		return NormalizeText(text)
	}

	html, htmlErr := node.InnerHTML(ctx)
	if htmlErr != nil {
		x.warn("item unreadable", "index", index, "text_error", err, "html_error", htmlErr)
		return ""
	}

	x.warn("item text unavailable, using markup", "index", index, "error", err)
	return TrimMarkup(html)
}

func formatWarning(msg string, args ...any) string {
	for i := 0; i+1 < len(args); i += 2 {
		msg += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	return msg
}
