package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"hitched-scraper/utils"
)

const pageKeyPrefix = "hitched:page:"

// PageCache keeps gzipped rendered HTML in memcache, keyed by URL, so a
// re-run after a late failure can skip re-rendering pages it already saw.
type PageCache struct {
	client *memcache.Client
	ttl    time.Duration
	logger *utils.Logger
}

// NewPageCache creates a PageCache against the memcache server at addr.
func NewPageCache(addr string, ttl time.Duration, logger *utils.Logger) *PageCache {
	client := memcache.New(addr)
	client.Timeout = 2 * time.Second
	return &PageCache{client: client, ttl: ttl, logger: logger}
}

// Ping checks that the server is reachable.
func (c *PageCache) Ping() error {
	return c.client.Ping()
}

// Get returns the cached HTML for url. Misses and errors both report false;
// errors other than a miss are logged.
func (c *PageCache) Get(url string) (string, bool) {
	item, err := c.client.Get(pageKey(url))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.logger.Warn("[cache] get %s: %v", url, err)
		}
		return "", false
	}
	html, err := gunzip(item.Value)
	if err != nil {
		c.logger.Warn("[cache] corrupt entry for %s: %v", url, err)
		return "", false
	}
	c.logger.Debug("[cache] hit %s", url)
	return html, true
}

// Put stores html for url. Failures are logged and otherwise ignored.
func (c *PageCache) Put(url, html string) {
	data, err := gzipString(html)
	if err != nil {
		c.logger.Warn("[cache] compress %s: %v", url, err)
		return
	}
	err = c.client.Set(&memcache.Item{
		Key:        pageKey(url),
		Value:      data,
		Expiration: int32(c.ttl.Seconds()),
	})
	if err != nil {
		c.logger.Warn("[cache] set %s: %v", url, err)
	}
}

// pageKey hashes the URL; memcache keys cannot exceed 250 bytes or hold spaces.
func pageKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return pageKeyPrefix + hex.EncodeToString(sum[:])
}

func gzipString(s string) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.WriteString(zw, s); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
