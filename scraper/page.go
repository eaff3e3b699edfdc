package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
)

// rodPage adapts a pooled rod tab to extractor.Session. Every call binds
// the caller's context, so no state outlives the call.
type rodPage struct {
	page *rod.Page
}

func (r *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation to "+url+" failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "page load did not complete")
	}
	return nil
}

// firstVisibleJS returns the first match of sel that has a layout box and
// is not visibility:hidden, or null. Same test as rod's WaitVisible.
const firstVisibleJS = `(sel) => {
	for (const el of document.querySelectorAll(sel)) {
		const box = el.getBoundingClientRect();
		if (box.width > 0 && box.height > 0 && getComputedStyle(el).visibility !== "hidden") {
			return el;
		}
	}
	return null;
}`

// WaitForSelector waits for the first match of selector that satisfies
// state, the same rule the snapshot backend applies.
func (r *rodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration, state extractor.Visibility) (extractor.Element, error) {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	// Both lookups retry until a node qualifies or the timeout fires.
	var (
		el  *rod.Element
		err error
	)
	if state == extractor.Visible {
		el, err = p.ElementByJS(rod.Eval(firstVisibleJS, selector))
	} else {
		el, err = p.Element(selector)
	}
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeSelectorTimeout, selector+" did not become "+state.String())
	}
	return &rodElement{el: el}, nil
}

func (r *rodPage) Content(ctx context.Context) (string, error) {
	html, err := r.page.Context(ctx).HTML()
	if err != nil {
		return "", categorizeError(err, models.ErrCodeSerialization, "failed to serialize page")
	}
	return html, nil
}

// rodElement adapts a rod element handle to extractor.Element.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) QueryOne(ctx context.Context, selector string) (extractor.Element, bool, error) {
	found, child, err := e.el.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, categorizeError(err, models.ErrCodeDetachedNode, "query "+selector)
	}
	if !found {
		return nil, false, nil
	}
	return &rodElement{el: child}, true, nil
}

func (e *rodElement) QueryAll(ctx context.Context, selector string) ([]extractor.Element, error) {
	children, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeDetachedNode, "query all "+selector)
	}
	out := make([]extractor.Element, len(children))
	for i, c := range children {
		out[i] = &rodElement{el: c}
	}
	return out, nil
}

func (e *rodElement) InnerText(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", categorizeError(err, models.ErrCodeDetachedNode, "failed to read element text")
	}
	return text, nil
}

func (e *rodElement) InnerHTML(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.innerHTML`)
	if err != nil {
		return "", categorizeError(err, models.ErrCodeDetachedNode, "failed to read element markup")
	}
	return res.Value.Str(), nil
}
