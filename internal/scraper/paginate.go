package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fundscout/portal-scraper/config"
	"github.com/fundscout/portal-scraper/internal/browser"
	"github.com/fundscout/portal-scraper/internal/model"
)

const selPaginationScope = `.pagination, .pager, nav[aria-label*="agination"], ul.page-numbers`

var pageOfRe = regexp.MustCompile(`(?i)page\s+(\d+)\s+of\s+(\d+)`)

// pageWalker drives the extractor across all listing pages. Pagination on
// the portal is an in-page DOM mutation, not a navigation, so advancing is
// click-then-watch-content rather than click-then-wait-for-load.
type pageWalker struct {
	sess browser.Session
	cfg  *config.ScraperConfig
	log  *slog.Logger
	emit emitter
	base *url.URL
}

// walkAll extracts every listing page in order and accumulates the records.
// It never fails: an empty page, a missing next-page control, or hitting the
// page cap each just end the walk with whatever was gathered.
func (w *pageWalker) walkAll(ctx context.Context) []model.Record {
	var all []model.Record
	page := 1
	for {
		if ctx.Err() != nil {
			w.log.Warn("walk cancelled.", slog.Int("page", page))
			return all
		}
		html, err := w.sess.HTML(ctx)
		if err != nil {
			w.log.Warn("could not snapshot listing page.", slog.String("err", err.Error()))
			return all
		}
		records, matcherName := extractListing(html, w.base)
		if len(records) == 0 {
			w.log.Info("no records on page, listing exhausted.", slog.Int("page", page))
			return all
		}
		all = append(all, records...)
		w.emit.page(page, len(records))
		w.log.Info("extracted listing page.", slog.Int("page", page),
			slog.Int("records", len(records)), slog.String("matcher", matcherName))
		w.logAdvisoryPageCount(html, page)

		if page >= w.cfg.MaxPages {
			// Safety stop, not an error: whatever was gathered is returned.
			w.log.Warn("page cap reached, stopping walk.", slog.Int("cap", w.cfg.MaxPages))
			return all
		}
		if !w.gotoPage(ctx, page+1) {
			w.log.Info("no next-page control found, listing exhausted.", slog.Int("page", page))
			return all
		}
		w.awaitContentChange(ctx, records[0].Title)
		page++
	}
}

// gotoPage tries the escalating next-page strategies in order: exact
// attribute, accessible name, then a raw in-page text scan with a direct
// click for controls the selector engine cannot see.
func (w *pageWalker) gotoPage(ctx context.Context, n int) bool {
	num := strconv.Itoa(n)

	sel := fmt.Sprintf(`[data-page=%q]`, num)
	if browser.TryClick(ctx, w.sess, sel, w.cfg.OptionalTimeout) {
		w.log.Debug("advanced via data-page attribute.", slog.Int("page", n))
		return true
	}

	sel = fmt.Sprintf(`a[aria-label="Page %s"], a[aria-label=%q], button[aria-label="Page %s"]`, num, num, num)
	if browser.TryClick(ctx, w.sess, sel, w.cfg.OptionalTimeout) {
		w.log.Debug("advanced via accessible name.", slog.Int("page", n))
		return true
	}

	if ok, err := w.sess.ClickByText(ctx, selPaginationScope, num); err == nil && ok {
		w.log.Debug("advanced via in-page text scan.", slog.Int("page", n))
		return true
	}

	return false
}

// awaitContentChange waits (bounded) for the first record title to differ
// from the prior page's. There is no navigation-complete signal for in-page
// mutation, so a timeout falls back to a fixed settle delay instead of
// failing.
func (w *pageWalker) awaitContentChange(ctx context.Context, prevTitle string) {
	deadline := time.Now().Add(w.cfg.ContentChangeTimeout)
	for {
		if ctx.Err() != nil {
			return
		}
		html, err := w.sess.HTML(ctx)
		if err == nil {
			if records, _ := extractListing(html, w.base); len(records) > 0 && records[0].Title != prevTitle {
				return
			}
		}
		if !time.Now().Before(deadline) {
			break
		}
		time.Sleep(250 * time.Millisecond)
	}
	w.log.Debug("content change not observed, applying settle delay.")
	time.Sleep(w.cfg.SettleDelay)
}

// logAdvisoryPageCount reports the portal's own "Page X of Y" label when one
// is rendered. Advisory only; it is never trusted to drive the walk.
func (w *pageWalker) logAdvisoryPageCount(html string, page int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	m := pageOfRe.FindStringSubmatch(doc.Text())
	if len(m) == 3 {
		w.log.Debug("portal reports page position.", slog.Int("page", page),
			slog.String("portal_page", m[1]), slog.String("portal_total", m[2]))
	}
}
