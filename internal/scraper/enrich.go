package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fundscout/portal-scraper/internal/browser"
	"github.com/fundscout/portal-scraper/internal/model"
)

// Per-field caps applied before sanitization, bounding memory and noise from
// sprawling detail pages.
const (
	maxDescriptionLen = 2000
	maxEligibilityLen = 2000
	maxHowToApplyLen  = 1000
	maxContactLen     = 500
	maxExcerptLen     = 500
)

const headingSel = "h1, h2, h3, h4, h5, h6, dt, .section-heading"

// enrichAll visits each record's detail page in order and fills in the
// long-form fields. A failure on one record keeps that record in its
// listing-only form and moves on; enrichment never fails as a whole. The
// returned slice has the same length and order as the input.
func (s *Service) enrichAll(ctx context.Context, sess browser.Session, records []model.Record, emit emitter) []model.Record {
	total := len(records)
	out := make([]model.Record, total)
	copy(out, records)

	for i := range out {
		if ctx.Err() != nil {
			s.log.Warn("enrichment cancelled.", slog.Int("done", i), slog.Int("total", total))
			return out
		}
		emit.progress(i+1, total, out[i].Title)

		enriched, err := s.enrichOne(ctx, sess, out[i])
		if err != nil {
			s.log.Warn("enrichment failed, keeping listing fields.",
				slog.String("link", out[i].Link), slog.String("err", err.Error()))
		} else {
			out[i] = enriched
			emit.record(out[i])
		}

		// Sequential with a breather between detail pages; bursts of
		// back-to-back requests trip the portal's bot heuristics.
		if i < total-1 {
			time.Sleep(s.cfg.ScraperSettings.PolitenessDelay)
		}
	}

	return out
}

func (s *Service) enrichOne(ctx context.Context, sess browser.Session, rec model.Record) (model.Record, error) {
	status, err := sess.Navigate(ctx, rec.Link, s.cfg.ScraperSettings.PageLoadTimeout)
	if err != nil {
		return rec, err
	}
	// A dead detail link serves an error page that loads and settles like
	// any other; scraping it would fill the record with error-page text.
	if status >= 400 {
		return rec, fmt.Errorf("detail page returned status %d", status)
	}
	html, err := sess.HTML(ctx)
	if err != nil {
		return rec, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec, err
	}

	// Fields already known from the listing survive an enrichment miss.
	if v := headingContent(doc, maxDescriptionLen, "description", "about this fund"); v != "" {
		rec.Description = v
	}
	if v := headingContent(doc, maxEligibilityLen, "eligibility", "who can apply"); v != "" {
		rec.Eligibility = v
	}
	if v := headingContent(doc, maxHowToApplyLen, "how to apply"); v != "" {
		rec.HowToApply = v
	}
	if v := headingContent(doc, maxContactLen, "contact"); v != "" {
		rec.ContactInfo = v
	}
	if v := areaTags(doc); v != "" {
		rec.AreaOfWork = v
	}
	if rec.AdditionalInfo == "" && rec.Description == "" {
		rec.AdditionalInfo = Sanitize(truncate(doc.Find("main, #content, body").First().Text(), maxExcerptLen))
	}

	return rec, nil
}

// headingContent scans heading-like elements for a case-insensitive label
// match and returns the content sitting between that heading and the next
// one, capped then sanitized.
func headingContent(doc *goquery.Document, max int, labels ...string) string {
	content := ""
	doc.Find(headingSel).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !matchesLabel(h.Text(), labels) {
			return true
		}
		raw := sectionHTML(h.NextUntil(headingSel))
		if strings.TrimSpace(raw) == "" {
			raw = h.Next().Text()
		}
		content = Sanitize(truncate(raw, max))
		return content == ""
	})
	return content
}

func sectionHTML(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Each(func(_ int, node *goquery.Selection) {
		if h, err := goquery.OuterHtml(node); err == nil {
			b.WriteString(h)
		}
	})
	return b.String()
}

// areaTags collects tag values from any label/value pair whose label
// mentions "area".
func areaTags(doc *goquery.Document) string {
	var tags []string
	seen := make(map[string]struct{})
	doc.Find("dt, .label, .field-label").Each(func(_ int, l *goquery.Selection) {
		if !strings.Contains(strings.ToLower(l.Text()), "area") {
			return
		}
		value := l.Next()
		items := value.Find("li, .tag")
		if items.Length() == 0 {
			items = value
		}
		items.Each(func(_ int, item *goquery.Selection) {
			tag := Sanitize(item.Text())
			if tag == "" {
				return
			}
			if _, dup := seen[tag]; dup {
				return
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		})
	})
	return strings.Join(tags, ", ")
}
