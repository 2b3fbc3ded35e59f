// Package browser wraps one authenticated browser automation context behind
// a narrow interface so the scraping logic stays portable across automation
// backends and testable without a real browser.
package browser

import (
	"context"
	"time"
)

// Session is a single live browser tab. One session is scoped to one scrape
// invocation; it is not safe to reuse after Close.
type Session interface {
	// Navigate loads the url, waits (bounded) for the page to settle, and
	// reports the HTTP status of the main document. A served error page is
	// a successful navigation; the status is the only signal it was one.
	// Status 0 means no response was observed.
	Navigate(ctx context.Context, url string, timeout time.Duration) (int, error)
	// WaitVisible blocks until the selector matches a visible element or
	// the timeout elapses.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	// Click waits for the selector (bounded) and clicks it.
	Click(ctx context.Context, sel string, timeout time.Duration) error
	// ClickByText scans elements under scopeSel inside the page itself and
	// clicks the first whose trimmed text equals text. This reaches
	// script-driven controls the selector-based strategies cannot see.
	ClickByText(ctx context.Context, scopeSel, text string) (bool, error)
	// Fill clears the field matched by sel and types value into it.
	Fill(ctx context.Context, sel, value string, timeout time.Duration) error
	// HTML returns a snapshot of the current DOM.
	HTML(ctx context.Context) (string, error)
	// Location returns the current page url.
	Location(ctx context.Context) (string, error)
	Close() error
}

// TryWait probes for an optional element. Expiry means "absent", never an
// error.
func TryWait(ctx context.Context, s Session, sel string, timeout time.Duration) bool {
	return s.WaitVisible(ctx, sel, timeout) == nil
}

// TryClick clicks an optional element, swallowing any failure.
func TryClick(ctx context.Context, s Session, sel string, timeout time.Duration) bool {
	return s.Click(ctx, sel, timeout) == nil
}
