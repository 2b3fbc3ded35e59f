package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/fundscout/portal-scraper/config"
)

// ChromeSession drives a headless Chrome tab through chromedp.
type ChromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	cfg     *config.ScraperConfig
	log     *slog.Logger
}

var _ Session = (*ChromeSession)(nil)

func NewChromeSession(ctx context.Context, cfg *config.ScraperConfig, log *slog.Logger) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1366, 900),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		cfg:     cfg,
		log:     log,
	}
	// Start the browser eagerly so a broken Chrome install surfaces here
	// instead of mid-login.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *ChromeSession) run(timeout time.Duration, actions ...chromedp.Action) error {
	tCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(tCtx, actions...)
}

func (s *ChromeSession) Navigate(_ context.Context, url string, timeout time.Duration) (int, error) {
	tCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	// Chrome renders a 404 like any other page and the navigation settles
	// normally, so the main document's status is captured off the network
	// events instead.
	var status atomic.Int64
	lctx, lcancel := context.WithCancel(tCtx)
	defer lcancel()
	chromedp.ListenTarget(lctx, func(ev interface{}) {
		if res, ok := ev.(*network.EventResponseReceived); ok && res.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, res.Response.Status)
			lcancel()
		}
	})

	err := chromedp.Run(tCtx,
		enableLifeCycleEvents(),
		navigateAndWaitFor(url, "networkIdle"),
	)
	return int(status.Load()), err
}

func (s *ChromeSession) WaitVisible(_ context.Context, sel string, timeout time.Duration) error {
	return s.run(timeout, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (s *ChromeSession) Click(_ context.Context, sel string, timeout time.Duration) error {
	return s.run(timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

// clickByTextJS runs inside the rendered page. It is the lowest-level
// pagination escape hatch: script-attached controls are sometimes invisible
// to selector-based waits but still respond to a direct click.
const clickByTextJS = `(() => {
	const roots = document.querySelectorAll(%q);
	for (const root of roots) {
		const nodes = root.querySelectorAll('a, button, span, li');
		for (const el of nodes) {
			if (el.textContent.trim() === %q) {
				el.click();
				return true;
			}
		}
	}
	return false;
})()`

func (s *ChromeSession) ClickByText(_ context.Context, scopeSel, text string) (bool, error) {
	var clicked bool
	err := s.run(s.cfg.ScriptTimeout,
		chromedp.Evaluate(fmt.Sprintf(clickByTextJS, scopeSel, text), &clicked))
	if err != nil {
		return false, err
	}
	return clicked, nil
}

func (s *ChromeSession) Fill(_ context.Context, sel, value string, timeout time.Duration) error {
	// Clear first, stale autofill otherwise survives the SendKeys.
	return s.run(timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
}

func (s *ChromeSession) HTML(_ context.Context) (string, error) {
	var html string
	err := s.run(s.cfg.SnapshotTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		rootNode, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(rootNode.NodeID).Do(ctx)
		return err
	}))
	return html, err
}

func (s *ChromeSession) Location(_ context.Context) (string, error) {
	var loc string
	err := s.run(s.cfg.ScriptTimeout, chromedp.Location(&loc))
	return loc, err
}

func (s *ChromeSession) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	return nil
}

func enableLifeCycleEvents() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		err := page.Enable().Do(ctx)
		if err != nil {
			return err
		}
		err = page.SetLifecycleEventsEnabled(true).Do(ctx)
		if err != nil {
			return err
		}
		return nil
	}
}

func navigateAndWaitFor(url string, eventName string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		_, _, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		return waitFor(ctx, eventName)
	}
}

// waitFor blocks until a lifecycle event with the given name fires or ctx
// expires.
func waitFor(ctx context.Context, eventName string) error {
	ch := make(chan struct{})
	cctx, cancel := context.WithCancel(ctx)
	chromedp.ListenTarget(cctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventLifecycleEvent:
			if e.Name == eventName {
				cancel()
				close(ch)
			}
		}
	})
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
