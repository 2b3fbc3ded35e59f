package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fundscout/portal-scraper/internal/browser"
)

const (
	selFilterScope  = `.filters, .search-filters, form.search, aside`
	selSearchSubmit = `button[type="submit"].search, form.search button[type="submit"], #search-button`
)

// applyFilters ticks the configured status and area checkboxes on the search
// form. Filter markup varies too much to match strictly, so every lookup is
// independently best-effort: a missing control is skipped, never an error.
func (s *Service) applyFilters(ctx context.Context, sess browser.Session) {
	for _, status := range s.cfg.ScraperSettings.StatusFilters {
		s.applyCheckbox(ctx, sess, "status", status)
	}
	for _, area := range s.cfg.ScraperSettings.AreaFilters {
		s.applyCheckbox(ctx, sess, "area", area)
	}

	if !browser.TryClick(ctx, sess, selSearchSubmit, s.cfg.ScraperSettings.OptionalTimeout) {
		s.log.Warn("search submit control not found, keeping unfiltered results.")
	}
}

func (s *Service) applyCheckbox(ctx context.Context, sess browser.Session, group, value string) {
	sel := fmt.Sprintf(`input[type="checkbox"][value=%q]`, value)
	if browser.TryClick(ctx, sess, sel, s.cfg.ScraperSettings.OptionalTimeout) {
		return
	}
	if ok, _ := sess.ClickByText(ctx, selFilterScope, value); ok {
		return
	}
	s.log.Debug("filter control not found, skipping.",
		slog.String("group", group), slog.String("value", value))
}
