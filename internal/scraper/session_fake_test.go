package scraper

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fakeSession is an in-memory browser backend scripted with canned pages.
// It implements browser.Session so every scraper component can be exercised
// without Chrome.
type fakeSession struct {
	mu sync.Mutex

	baseURL    string
	searchPath string
	loginHTML  string
	// listing pages in order; index 0 is page 1
	listings []string
	// absolute detail url -> page html
	details map[string]string
	// urls whose navigation fails
	failNav map[string]bool
	// url -> served http status; unset urls answer 200. The page body is
	// still served, mirroring a browser rendering an error page.
	statuses map[string]int
	// when true the submit click leaves the login form in place
	failLogin bool
	// html shown after a failed login attempt
	failedLoginHTML string
	// when true, every numbered page control "exists": clicking page n
	// serves listings[n%len(listings)] forever
	endlessPages bool
	// when set, numbered controls are reachable only through the in-page
	// text scan, not through selector clicks
	textPagerOnly bool

	authenticated bool
	current       string
	loc           string
	closed        bool
	navigations   []string
	fills         map[string]string
	textClicks    []string
}

func newFakeSession(baseURL string) *fakeSession {
	return &fakeSession{
		baseURL:    baseURL,
		searchPath: "/funding-search",
		loginHTML:  loginPageHTML,
		details:    map[string]string{},
		failNav:    map[string]bool{},
		statuses:   map[string]int{},
		fills:      map[string]string{},
	}
}

func (f *fakeSession) Navigate(_ context.Context, url string, _ time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigations = append(f.navigations, url)
	if f.failNav[url] {
		return 0, errors.New("net::ERR_ABORTED")
	}
	f.loc = url
	switch {
	case url == f.baseURL:
		if f.authenticated {
			f.current = "<html><body>dashboard</body></html>"
		} else {
			f.current = f.loginHTML
		}
	case url == f.baseURL+f.searchPath:
		f.serveListing(0)
	default:
		if html, ok := f.details[url]; ok {
			f.current = html
		} else {
			f.current = "<html><body>not found</body></html>"
		}
	}
	if status, ok := f.statuses[url]; ok {
		return status, nil
	}
	return 200, nil
}

func (f *fakeSession) serveListing(idx int) {
	if len(f.listings) == 0 {
		f.current = "<html><body><p>No results found.</p></body></html>"
		return
	}
	f.current = f.listings[idx%len(f.listings)]
}

func (f *fakeSession) WaitVisible(_ context.Context, sel string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case sel == selLoginUser:
		if f.authenticated {
			return errors.New("element not visible")
		}
		return nil
	case strings.Contains(sel, "a[title="):
		if f.authenticated {
			return nil
		}
		return errors.New("element not visible")
	default:
		return errors.New("element not visible")
	}
}

func (f *fakeSession) Click(_ context.Context, sel string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case sel == selConsentAccept:
		return nil
	case sel == selLoginSubmit:
		if f.failLogin {
			f.current = f.failedLoginHTML
			return nil
		}
		f.authenticated = true
		f.loc = f.baseURL + "/dashboard"
		return nil
	case strings.HasPrefix(sel, "[data-page="):
		if f.textPagerOnly {
			return errors.New("element not visible")
		}
		n, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(sel, "[data-page="), `"]`))
		if err != nil {
			return err
		}
		return f.clickPage(n)
	default:
		return errors.New("element not visible")
	}
}

func (f *fakeSession) clickPage(n int) error {
	if f.endlessPages {
		f.serveListing(n - 1)
		return nil
	}
	if n < 1 || n > len(f.listings) {
		return errors.New("element not visible")
	}
	f.serveListing(n - 1)
	return nil
}

func (f *fakeSession) ClickByText(_ context.Context, scopeSel, text string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textClicks = append(f.textClicks, text)
	if scopeSel != selPaginationScope {
		return false, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return false, nil
	}
	if err := f.clickPage(n); err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeSession) Fill(_ context.Context, sel, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills[sel] = value
	return nil
}

func (f *fakeSession) HTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSession) Location(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loc, nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
