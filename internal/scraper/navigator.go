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

// The portal's markup drifts between deploys, so every selector here is a
// comma group of the variants seen in the wild.
const (
	selConsentAccept = `#ccc-notify-accept, #onetrust-accept-btn-handler, button.cookie-accept`
	selLoginUser     = `input[name="username"], #Username, input[type="email"]`
	selLoginPass     = `input[name="password"], #Password, input[type="password"]`
	selLoginSubmit   = `form button[type="submit"], form input[type="submit"]`
	selValidation    = `.validation-summary-errors, .field-validation-error, [role="alert"]`
)

// authenticate logs the session into the portal. There is no single reliable
// post-login signal, so several are raced against a fixed fallback delay and
// the login form itself is re-checked afterwards either way.
func (s *Service) authenticate(ctx context.Context, sess browser.Session, creds model.Credentials) error {
	pc := s.cfg.PortalSettings
	sc := s.cfg.ScraperSettings

	if _, err := sess.Navigate(ctx, pc.BaseURL, sc.PageLoadTimeout); err != nil {
		return &NavigationTimeoutError{URL: pc.BaseURL, Timeout: sc.PageLoadTimeout}
	}
	if browser.TryClick(ctx, sess, selConsentAccept, sc.OptionalTimeout) {
		s.log.Debug("cookie banner dismissed.")
	}

	if err := sess.WaitVisible(ctx, selLoginUser, sc.ElementTimeout); err != nil {
		return &AuthenticationError{Detail: "login form not found"}
	}
	if err := sess.Fill(ctx, selLoginUser, creds.Username, sc.ElementTimeout); err != nil {
		return &AuthenticationError{Detail: "could not fill username field"}
	}
	if err := sess.Fill(ctx, selLoginPass, creds.Password, sc.ElementTimeout); err != nil {
		return &AuthenticationError{Detail: "could not fill password field"}
	}
	if err := sess.Click(ctx, selLoginSubmit, sc.ElementTimeout); err != nil {
		return &AuthenticationError{Detail: "could not submit login form"}
	}

	watches := make([]browser.Watch, 0, len(pc.PostLoginPaths)+1)
	for _, p := range pc.PostLoginPaths {
		watches = append(watches, browser.PollUntil(250*time.Millisecond, func(ctx context.Context) bool {
			loc, err := sess.Location(ctx)
			return err == nil && strings.Contains(loc, p)
		}))
	}
	accountSel := fmt.Sprintf(`a[title=%q], a[aria-label=%q]`, pc.AccountLinkText, pc.AccountLinkText)
	watches = append(watches, func(ctx context.Context) error {
		return sess.WaitVisible(ctx, accountSel, sc.LoginFallbackDelay)
	})

	signal := browser.Race(ctx, sc.LoginFallbackDelay, watches...)
	if signal == browser.RaceFallback {
		s.log.Debug("no login success signal fired within fallback delay.")
	} else {
		s.log.Debug("login signal resolved.", slog.Int("signal", signal))
	}

	// The race only tells us something changed; the form itself tells us
	// whether the login took.
	if browser.TryWait(ctx, sess, selLoginUser, sc.LoginRecheckTimeout) {
		return &AuthenticationError{Detail: s.loginValidationText(ctx, sess)}
	}

	return nil
}

// loginValidationText scrapes whatever validation message the portal left on
// the failed form. Best effort, empty on any miss.
func (s *Service) loginValidationText(ctx context.Context, sess browser.Session) string {
	html, err := sess.HTML(ctx)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return truncate(Sanitize(doc.Find(selValidation).First().Text()), 200)
}
