// Package browsertest provides an in-memory browser.Session serving static HTML.
package browsertest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"hitched-scraper/browser"
)

// ErrNotFound is returned by Navigate for URLs the Site does not serve.
var ErrNotFound = errors.New("browsertest: no page registered")

// Site is a set of static pages shared by any number of fake sessions.
// It records every navigation, so tests can assert on visit order.
type Site struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	visits  []string
	clicks  map[string]int
	opened  int
	closed  int
	failNew error
}

// NewSite creates a Site serving pages keyed by absolute URL.
func NewSite(pages map[string]string) *Site {
	if pages == nil {
		pages = make(map[string]string)
	}
	return &Site{pages: pages, fail: make(map[string]error), clicks: make(map[string]int)}
}

// Page registers or replaces the HTML served for url.
func (s *Site) Page(url, html string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = html
	return s
}

// Fail makes every navigation to url return err.
func (s *Site) Fail(url string, err error) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[url] = err
	return s
}

// FailNewSessions makes the factory return err.
func (s *Site) FailNewSessions(err error) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNew = err
	return s
}

// Session opens a new fake session on the site.
func (s *Site) Session() *Session {
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	return &Session{site: s}
}

// Factory returns a browser.Factory opening sessions on the site.
func (s *Site) Factory() browser.Factory {
	return func() (browser.Session, error) {
		s.mu.Lock()
		err := s.failNew
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return s.Session(), nil
	}
}

// Visits returns every URL navigated to, in order.
func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Clicks returns how many elements ClickAll clicked for selector across all sessions.
func (s *Site) Clicks(selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[selector]
}

// Sessions reports how many sessions were opened and closed.
func (s *Site) Sessions() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

// Session is a fake browser.Session. WaitFor never sleeps: a selector that is
// absent from the page times out immediately.
type Session struct {
	site    *Site
	current string
	html    string
	closed  bool
}

var _ browser.Session = (*Session)(nil)

func (f *Session) Navigate(url string) error {
	f.site.mu.Lock()
	defer f.site.mu.Unlock()

	f.site.visits = append(f.site.visits, url)
	if err, ok := f.site.fail[url]; ok {
		return err
	}
	html, ok := f.site.pages[url]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	f.current = url
	f.html = html
	return nil
}

func (f *Session) WaitFor(selector string, timeout time.Duration) error {
	doc, err := browser.Parse(f.html, f.current)
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s after %v", browser.ErrWaitTimeout, selector, timeout)
	}
	return nil
}

func (f *Session) ClickAll(selector string) (int, error) {
	doc, err := browser.Parse(f.html, f.current)
	if err != nil {
		return 0, err
	}
	n := doc.Find(selector).Length()

	f.site.mu.Lock()
	f.site.clicks[selector] += n
	f.site.mu.Unlock()
	return n, nil
}

func (f *Session) HTML() (string, error) {
	if f.closed {
		return "", errors.New("browsertest: session closed")
	}
	return f.html, nil
}

func (f *Session) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.site.mu.Lock()
	f.site.closed++
	f.site.mu.Unlock()
	return nil
}
