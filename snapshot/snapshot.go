// Package snapshot implements the extractor capabilities over a static HTML
// document, for saved pages, server-rendered responses and tests.
//
// There is no layout engine here: "visible" is approximated from the
// markup (hidden attributes, inline display/visibility, non-rendered
// ancestors) and waits return immediately instead of polling.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
)

// Page is a parsed, immutable HTML document.
type Page struct {
	doc *goquery.Document
}

// New parses rawHTML into a Page.
func New(rawHTML string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "failed to parse snapshot HTML", err)
	}
	return &Page{doc: doc}, nil
}

// WaitForSelector returns the first node matching selector that satisfies
// state. A static document cannot change, so the timeout is only reported.
func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration, state extractor.Visibility) (extractor.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSelectorTimeout, "waiting for "+selector, err)
	}

	m, err := Compile(selector)
	if err != nil {
		return nil, err
	}

	matches := p.doc.FindMatcher(m)
	for i, n := range matches.Nodes {
		if state == extractor.Attached || isVisible(n) {
			return &Element{sel: matches.Eq(i)}, nil
		}
	}

	return nil, models.NewScrapeError(
		models.ErrCodeSelectorTimeout,
		fmt.Sprintf("%s did not become %s within %s", selector, state, timeout),
		nil,
	)
}

// Content serializes the parsed document.
func (p *Page) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.doc.Html()
}

// Element is a single node of a Page.
type Element struct {
	sel *goquery.Selection
}

func (e *Element) QueryOne(_ context.Context, selector string) (extractor.Element, bool, error) {
	m, err := Compile(selector)
	if err != nil {
		return nil, false, err
	}
	found := e.sel.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil, false, nil
	}
	return &Element{sel: found}, true, nil
}

func (e *Element) QueryAll(_ context.Context, selector string) ([]extractor.Element, error) {
	m, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	found := e.sel.FindMatcher(m)
	out := make([]extractor.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{sel: s})
	})
	return out, nil
}

func (e *Element) InnerText(context.Context) (string, error) {
	if e.sel.Length() == 0 {
		return "", models.NewScrapeError(models.ErrCodeDetachedNode, "element has no node", nil)
	}
	return innerText(e.sel.Get(0)), nil
}

func (e *Element) InnerHTML(context.Context) (string, error) {
	return e.sel.Html()
}

// Compile parses a CSS selector, reporting syntax errors as INVALID_INPUT.
func Compile(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, fmt.Sprintf("invalid selector %q", selector), err)
	}
	return m, nil
}

// ValidateSelectors compiles each selector and returns the first failure.
func ValidateSelectors(selectors ...string) error {
	for _, sel := range selectors {
		if _, err := Compile(sel); err != nil {
			return err
		}
	}
	return nil
}
