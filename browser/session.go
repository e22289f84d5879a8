// Package browser wraps the headless browser behind a small Session interface
// so crawlers can run against Chrome in production and static HTML in tests.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrWaitTimeout is returned by WaitFor when the selector never appeared.
var ErrWaitTimeout = errors.New("browser: wait timed out")

// Session is one exclusive browser tab. It is not safe for concurrent use;
// concurrent crawlers each create their own.
type Session interface {
	// Navigate loads url and blocks until the page load completes.
	Navigate(url string) error
	// WaitFor blocks until selector matches an element or timeout elapses.
	WaitFor(selector string, timeout time.Duration) error
	// ClickAll clicks every element matching selector and returns how many were clicked.
	ClickAll(selector string) (int, error)
	// HTML returns the current rendered DOM as HTML.
	HTML() (string, error)
	Close() error
}

// Factory creates a new Session. Each call must return an independent session.
type Factory func() (Session, error)

// Snapshot parses the session's current DOM into a goquery document whose
// Url is set to pageURL, so relative links can be resolved.
func Snapshot(s Session, pageURL string) (*goquery.Document, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, fmt.Errorf("read DOM: %w", err)
	}
	return Parse(html, pageURL)
}

// Parse builds a goquery document from raw HTML.
func Parse(html, pageURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse DOM: %w", err)
	}
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			doc.Url = u
		}
	}
	return doc, nil
}
