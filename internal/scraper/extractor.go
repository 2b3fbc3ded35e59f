package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fundscout/portal-scraper/internal/model"
)

// detailLinkSel matches anchors pointing at a scheme detail page. Every
// matcher in the cascade keys off it one way or another.
const detailLinkSel = `a[href*="/scheme/"]`

// matcher is one structural strategy for pulling records off a listing page.
// The cascade below is ordered most-specific first; the first matcher that
// yields at least one record is used exclusively for that page.
type matcher interface {
	name() string
	extract(doc *goquery.Document, base *url.URL) []model.Record
}

var listingMatchers = []matcher{
	containerMatcher{},
	tableRowMatcher{},
	bareLinkMatcher{},
}

// extractListing runs the matcher cascade over a page snapshot. It returns
// the records and the name of the matcher that produced them.
func extractListing(html string, base *url.URL) ([]model.Record, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ""
	}
	for _, m := range listingMatchers {
		if records := m.extract(doc, base); len(records) > 0 {
			return records, m.name()
		}
	}
	return nil, ""
}

// containerMatcher finds item containers holding a detail link. This is the
// markup the portal serves most of the time.
type containerMatcher struct{}

func (containerMatcher) name() string { return "container" }

func (containerMatcher) extract(doc *goquery.Document, base *url.URL) []model.Record {
	var records []model.Record
	doc.Find(".opportunity-item, .search-result, li.result-item, article.result").Each(func(_ int, item *goquery.Selection) {
		if rec, ok := buildRecord(item, base); ok {
			records = append(records, rec)
		}
	})
	return records
}

// tableRowMatcher handles the older tabular rendering of the listing.
type tableRowMatcher struct{}

func (tableRowMatcher) name() string { return "table-row" }

func (tableRowMatcher) extract(doc *goquery.Document, base *url.URL) []model.Record {
	var records []model.Record
	doc.Find(`table tr[class*="scheme"], table tr.result-row`).Each(func(_ int, row *goquery.Selection) {
		if rec, ok := buildRecord(row, base); ok {
			records = append(records, rec)
		}
	})
	return records
}

// bareLinkMatcher is the last resort: any detail link anywhere on the page
// becomes a record carrying only title and link.
type bareLinkMatcher struct{}

func (bareLinkMatcher) name() string { return "bare-link" }

func (bareLinkMatcher) extract(doc *goquery.Document, base *url.URL) []model.Record {
	var records []model.Record
	doc.Find(detailLinkSel).Each(func(_ int, link *goquery.Selection) {
		title := Sanitize(link.Text())
		href := absoluteLink(link, base)
		if title == "" || href == "" {
			return
		}
		records = append(records, model.Record{Title: title, Link: href})
	})
	return records
}

// buildRecord assembles a record from one item container. A missing field is
// an empty string; a missing title or link drops the record.
func buildRecord(item *goquery.Selection, base *url.URL) (model.Record, bool) {
	link := item.Find(detailLinkSel).First()
	href := absoluteLink(link, base)
	title := Sanitize(link.Text())
	if title == "" {
		title = Sanitize(item.Find("h2, h3, h4").First().Text())
	}
	if title == "" || href == "" {
		return model.Record{}, false
	}

	return model.Record{
		Title:      title,
		Funder:     labelValue(item, "funder", "provider"),
		MaxAmount:  labelValue(item, "maximum", "max amount", "amount"),
		Deadline:   labelValue(item, "deadline", "closing"),
		Status:     labelValue(item, "status"),
		AreaOfWork: labelValue(item, "area"),
		Link:       href,
	}, true
}

// labelValue scans label/value pairs inside scope for a label containing any
// of the given strings and returns the adjacent value, or "" on a miss.
func labelValue(scope *goquery.Selection, labels ...string) string {
	value := ""
	scope.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if matchesLabel(dt.Text(), labels) {
			value = Sanitize(dt.Next().Filter("dd").Text())
			return value == ""
		}
		return true
	})
	if value != "" {
		return value
	}
	scope.Find(".label, .field-label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		if matchesLabel(l.Text(), labels) {
			value = Sanitize(l.Next().Text())
			return value == ""
		}
		return true
	})
	return value
}

func matchesLabel(text string, labels []string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, l := range labels {
		if strings.Contains(t, l) {
			return true
		}
	}
	return false
}

func absoluteLink(link *goquery.Selection, base *url.URL) string {
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
