// Package extractor pulls a best-seller list out of a rendered page.
//
// The browser is reached only through the Page, Element and Session
// capability interfaces, so the same extraction runs against a live rod
// page, a static snapshot or a test fake.
package extractor

import (
	"context"
	"time"
)

// Visibility is the readiness condition WaitForSelector waits for.
type Visibility int

const (
	// Attached is satisfied once the node exists in the document.
	Attached Visibility = iota
	// Visible additionally requires the node to be laid out and rendered.
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "attached"
}

// Page is a loaded document.
type Page interface {
	// WaitForSelector blocks until some node matching selector reaches state
	// or timeout elapses, and returns the first such node in document order.
	// Failure is reported as a SELECTOR_TIMEOUT ScrapeError.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration, state Visibility) (Element, error)

	// Content serializes the whole document.
	Content(ctx context.Context) (string, error)
}

// Element is one DOM node. Its lifetime is bounded by the page it came from.
type Element interface {
	// QueryOne returns the first descendant matching selector.
	// An absent match is (nil, false, nil), not an error.
	QueryOne(ctx context.Context, selector string) (Element, bool, error)

	// QueryAll returns every descendant matching selector in document order.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// InnerText returns the rendered plain text. It fails with a
	// DETACHED_NODE ScrapeError when the node left the document.
	InnerText(ctx context.Context) (string, error)

	// InnerHTML returns the node's inner markup.
	InnerHTML(ctx context.Context) (string, error)
}

// Session is a Page that can also be navigated.
type Session interface {
	Page

	// Navigate loads url, failing with NAVIGATION_FAILED on network errors
	// or when timeout elapses.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
}
