package cmd

import (
	"context"
	"errors"
	"time"

	"hitched-scraper/browser"
	"hitched-scraper/config"
	"hitched-scraper/storage"
	"hitched-scraper/utils"
)

// Per-stage log files under LOG_DIR.
const (
	regionsLog = "region_scraper_log.txt"
	venuesLog  = "scraper_log.txt"
	cleanerLog = "cleaner_log.txt"
	detailsLog = "every_details_log.txt"
	reviewsLog = "review_scraper_log.txt"
)

// app owns everything the stages share: the data layout, the sequential
// browser session and the optional cache and sinks. All are opened lazily.
type app struct {
	cfg    *config.Config
	layout storage.Layout
	logger *utils.Logger
	now    func() time.Time

	session  browser.Session
	cache    *storage.PageCache
	cacheSet bool
	sinks    storage.Fanout
	pg       *storage.PostgresWriter
	sinksSet bool
}

func newApp(cfg *config.Config) (*app, error) {
	layout, err := storage.NewLayout(cfg.DataDir)
	if err != nil {
		return nil, utils.RunError("create data layout", cfg.DataDir, err)
	}
	return &app{
		cfg:    cfg,
		layout: layout,
		logger: utils.NewLogger(),
		now:    time.Now,
	}, nil
}

// stageLogger opens the log file for one stage. The caller closes it.
func (a *app) stageLogger(file string) (*utils.Logger, error) {
	log, err := utils.NewStageLogger(a.cfg.LogDir, file)
	if err != nil {
		return nil, utils.RunError("open stage log", file, err)
	}
	return log, nil
}

// pageCache returns the memcache page cache, or nil when it is disabled or
// unreachable. An unreachable cache is not an error; pages are just rendered.
func (a *app) pageCache() *storage.PageCache {
	if a.cacheSet {
		return a.cache
	}
	a.cacheSet = true
	if a.cfg.MemcacheAddr == "" {
		return nil
	}

	cache := storage.NewPageCache(a.cfg.MemcacheAddr, a.cfg.PageCacheTTL, a.logger)
	if err := cache.Ping(); err != nil {
		a.logger.Warn("[cache] memcache at %s unavailable, continuing without page cache: %v", a.cfg.MemcacheAddr, err)
		return nil
	}
	a.logger.Info("[cache] Using memcache page cache at %s (ttl %v)", a.cfg.MemcacheAddr, a.cfg.PageCacheTTL)
	a.cache = cache
	return cache
}

// store wraps pageCache so a disabled cache is a nil interface, not a typed nil.
func (a *app) store() browser.PageStore {
	if c := a.pageCache(); c != nil {
		return c
	}
	return nil
}

// browser returns the session shared by the sequential stages, starting it on
// first use. Region and listing pages are always rendered live.
func (a *app) browser() (browser.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	chrome, err := browser.NewChromeSession(browser.OptionsFromConfig(a.cfg, a.logger))
	if err != nil {
		return nil, utils.RunError("start browser", "", err)
	}
	a.session = chrome
	return a.session, nil
}

// cachedBrowser is the shared session seen through the page cache, for
// detail pages. Closing stays with the app.
func (a *app) cachedBrowser() (browser.Session, error) {
	session, err := a.browser()
	if err != nil {
		return nil, err
	}
	return browser.WithCache(session, a.store()), nil
}

// sessionFactory creates independent sessions for the review workers.
func (a *app) sessionFactory() browser.Factory {
	return browser.CachedFactory(browser.ChromeFactory(browser.OptionsFromConfig(a.cfg, a.logger)), a.store())
}

// sink connects the configured downstream backends. With none configured it
// returns an empty Fanout, on which every write is a no-op.
func (a *app) sink(ctx context.Context) (storage.Fanout, error) {
	if a.sinksSet {
		return a.sinks, nil
	}

	var sinks storage.Fanout
	if a.cfg.PostgresEnabled {
		pg, err := storage.NewPostgresWriter(a.cfg.DSN())
		if err != nil {
			a.logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, utils.RunError("connect postgres", "", err)
		}
		a.pg = pg
		sinks = append(sinks, pg)
		a.logger.Info("[sink] Writing to PostgreSQL database %s", a.cfg.PostgresDB)
	}
	if a.cfg.RedisAddr != "" {
		pub, err := storage.NewRedisPublisher(ctx, a.cfg.RedisAddr, a.cfg.RedisDB, a.cfg.RedisStream, a.cfg.RedisStreamMaxLength)
		if err != nil {
			_ = sinks.Close()
			return nil, utils.RunError("connect redis", a.cfg.RedisAddr, err)
		}
		sinks = append(sinks, pub)
		a.logger.Info("[sink] Publishing to redis stream %s", pub.Stream())
	}

	a.sinks, a.sinksSet = sinks, true
	return sinks, nil
}

// Close releases the browser and the sinks.
func (a *app) Close() error {
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Close())
	}
	if a.sinks != nil {
		errs = append(errs, a.sinks.Close())
	}
	return errors.Join(errs...)
}
