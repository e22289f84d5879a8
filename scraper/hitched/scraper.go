// Package hitched crawls hitched.co.uk: regions, paginated venue listings,
// venue detail pages and review pages.
package hitched

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hitched-scraper/browser"
	"hitched-scraper/config"
	"hitched-scraper/utils"
)

// Scraper runs the sequential crawls over one browser session it does not own.
type Scraper struct {
	cfg     *config.Config
	sel     config.Selectors
	session browser.Session
	logger  *utils.Logger
}

// New creates a Scraper. The caller keeps ownership of session and closes it.
func New(cfg *config.Config, session browser.Session, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		sel:     cfg.Selectors,
		session: session,
		logger:  logger,
	}
}

// load navigates to url, waits up to timeout for selector and snapshots the DOM.
// A wait that expires returns an error wrapping browser.ErrWaitTimeout.
func (s *Scraper) load(url, selector string, timeout time.Duration) (*goquery.Document, error) {
	if err := s.session.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := s.session.WaitFor(selector, timeout); err != nil {
		return nil, err
	}
	return browser.Snapshot(s.session, url)
}
