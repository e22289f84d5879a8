package browser

import (
	"fmt"
	"time"
)

// PageStore keeps rendered page snapshots by URL.
type PageStore interface {
	Get(url string) (string, bool)
	Put(url, html string)
}

// CachedSession serves pages from a PageStore when it has them. A fresh
// snapshot is stored only once a WaitFor on the current page succeeded, so a
// page that never finished rendering is not kept. A cached page is the DOM as
// it was after the clicks of the run that stored it, so ClickAll is a no-op on hits.
type CachedSession struct {
	inner Session
	store PageStore

	current string
	cached  string
	hit     bool
	ready   bool
}

// WithCache wraps s. A nil store returns s unchanged.
func WithCache(s Session, store PageStore) Session {
	if store == nil {
		return s
	}
	return &CachedSession{inner: s, store: store}
}

// CachedFactory wraps every session produced by f.
func CachedFactory(f Factory, store PageStore) Factory {
	return func() (Session, error) {
		s, err := f()
		if err != nil {
			return nil, err
		}
		return WithCache(s, store), nil
	}
}

func (c *CachedSession) Navigate(url string) error {
	c.current = url
	c.ready = false
	if html, ok := c.store.Get(url); ok {
		c.hit = true
		c.cached = html
		return nil
	}
	c.hit = false
	c.cached = ""
	return c.inner.Navigate(url)
}

func (c *CachedSession) WaitFor(selector string, timeout time.Duration) error {
	if !c.hit {
		err := c.inner.WaitFor(selector, timeout)
		if err == nil {
			c.ready = true
		}
		return err
	}
	doc, err := Parse(c.cached, c.current)
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s (cached page)", ErrWaitTimeout, selector)
	}
	return nil
}

func (c *CachedSession) ClickAll(selector string) (int, error) {
	if c.hit {
		return 0, nil
	}
	return c.inner.ClickAll(selector)
}

func (c *CachedSession) HTML() (string, error) {
	if c.hit {
		return c.cached, nil
	}
	html, err := c.inner.HTML()
	if err != nil {
		return "", err
	}
	if c.ready && c.current != "" {
		c.store.Put(c.current, html)
	}
	return html, nil
}

func (c *CachedSession) Close() error {
	return c.inner.Close()
}
