// Package scraper is the extraction engine for the funding portal: it
// authenticates a browser session, walks the paginated search listing,
// optionally enriches each record from its detail page, and reports progress
// through an optional callback.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fundscout/portal-scraper/config"
	"github.com/fundscout/portal-scraper/internal/browser"
	"github.com/fundscout/portal-scraper/internal/model"
)

// SessionFactory opens a fresh browser session. Exactly one session exists
// per scrape invocation and it is closed on every exit path.
type SessionFactory func(ctx context.Context) (browser.Session, error)

type Service struct {
	cfg        *config.Config
	log        *slog.Logger
	newSession SessionFactory
}

func NewService(cfg *config.Config, log *slog.Logger, newSession SessionFactory) *Service {
	return &Service{cfg: cfg, log: log, newSession: newSession}
}

type Options struct {
	Enrich bool
}

// Run performs one complete scrape and blocks until it finishes.
func (s *Service) Run(ctx context.Context, opts Options) (*model.ScrapeResult, error) {
	return s.run(ctx, opts, emitter{})
}

// RunStreaming is Run plus ordered progress events delivered to onProgress
// from inside the scrape loops.
func (s *Service) RunStreaming(ctx context.Context, opts Options, onProgress ProgressFunc) (*model.ScrapeResult, error) {
	return s.run(ctx, opts, emitter{fn: onProgress})
}

func (s *Service) run(ctx context.Context, opts Options, emit emitter) (*model.ScrapeResult, error) {
	creds := model.Credentials{
		Username: s.cfg.PortalSettings.Username,
		Password: s.cfg.PortalSettings.Password,
	}
	if creds.Username == "" || creds.Password == "" {
		// Checked before any session opens; absence is never defaulted.
		return nil, &ConfigurationError{Reason: "portal credentials are not set"}
	}
	base, err := url.Parse(s.cfg.PortalSettings.BaseURL)
	if err != nil || base.Host == "" {
		return nil, &ConfigurationError{Reason: "portal base url is not valid"}
	}

	start := time.Now()
	emit.phase("launching", "")
	sess, err := s.newSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.log.Warn("failed to close browser session.", slog.String("err", cerr.Error()))
		}
	}()

	emit.phase("login", "")
	if err := s.authenticate(ctx, sess, creds); err != nil {
		return nil, err
	}
	s.log.Info("authenticated against portal.")

	emit.phase("searching", "")
	searchURL := s.cfg.PortalSettings.BaseURL + s.cfg.PortalSettings.SearchPath
	if _, err := sess.Navigate(ctx, searchURL, s.cfg.ScraperSettings.PageLoadTimeout); err != nil {
		s.log.Warn("search page navigation did not settle.", slog.String("err", err.Error()))
	}
	s.applyFilters(ctx, sess)

	emit.phase("extracting", "")
	walker := &pageWalker{
		sess: sess,
		cfg:  s.cfg.ScraperSettings,
		log:  s.log,
		emit: emit,
		base: base,
	}
	records := walker.walkAll(ctx)
	emit.phaseCount("extracted", len(records))
	s.log.Info("listing walk finished.", slog.Int("records", len(records)))

	if opts.Enrich && len(records) > 0 {
		emit.phaseCount("enriching", len(records))
		records = s.enrichAll(ctx, sess, records, emit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}

	return &model.ScrapeResult{
		Records:    records,
		TotalFound: len(records),
		FiltersUsed: model.FiltersUsed{
			Status:     s.cfg.ScraperSettings.StatusFilters,
			AreaOfWork: s.cfg.ScraperSettings.AreaFilters,
		},
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Enriched:   opts.Enrich,
	}, nil
}
