package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"hitched-scraper/config"
	"hitched-scraper/utils"
)

// ChromeOptions configures a ChromeSession.
type ChromeOptions struct {
	Headless        bool
	ChromeBin       string
	UserAgent       string
	PageLoadTimeout time.Duration
	// MinInterval is the minimum gap between two navigations of one session.
	MinInterval time.Duration
	// ClickSettle is how long to let the page react after ClickAll clicked something.
	ClickSettle time.Duration
	MaxRetries  int
	Logger      *utils.Logger
}

// OptionsFromConfig maps application config onto ChromeOptions.
func OptionsFromConfig(cfg *config.Config, logger *utils.Logger) ChromeOptions {
	return ChromeOptions{
		Headless:        cfg.Headless,
		ChromeBin:       cfg.ChromeBin,
		UserAgent:       cfg.UserAgent,
		PageLoadTimeout: cfg.PageLoadTimeout,
		MinInterval:     time.Duration(cfg.RateLimitMs) * time.Millisecond,
		ClickSettle:     500 * time.Millisecond,
		MaxRetries:      cfg.MaxRetries,
		Logger:          logger,
	}
}

// ChromeSession is a Session backed by a chromedp browser tab.
type ChromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	opts    ChromeOptions
	limiter *rate.Limiter
	retry   *utils.RetryConfig
}

// NewChromeSession starts a browser and opens a tab. Close must be called on every path.
func NewChromeSession(opts ChromeOptions) (*ChromeSession, error) {
	if opts.Logger == nil {
		opts.Logger = utils.NewLogger()
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}

	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	opts.Logger.Debug("[browser] Using browser binary: %s", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1366, 900),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser on the tab context itself; a timeout context here
	// would tear the browser down when it expired.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &ChromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		opts:        opts,
		limiter:     rate.NewLimiter(limit, 1),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      opts.Logger,
		},
	}, nil
}

// ChromeFactory returns a Factory producing independent Chrome sessions.
func ChromeFactory(opts ChromeOptions) Factory {
	return func() (Session, error) {
		return NewChromeSession(opts)
	}
}

func (s *ChromeSession) Navigate(url string) error {
	return s.retry.Do("navigate "+url, func() error {
		if err := s.limiter.Wait(s.ctx); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.PageLoadTimeout)
		defer cancel()

		if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
			return fmt.Errorf("chromedp navigate: %w", err)
		}
		return nil
	})
}

func (s *ChromeSession) WaitFor(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %v", ErrWaitTimeout, selector, timeout)
	}
	return fmt.Errorf("chromedp wait %s: %w", selector, err)
}

const clickAllJS = `(function(sel) {
	var n = 0;
	document.querySelectorAll(sel).forEach(function(el) {
		try { el.scrollIntoView({block: "center"}); el.click(); n++; } catch (e) {}
	});
	return n;
})(%s)`

func (s *ChromeSession) ClickAll(selector string) (int, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var clicked int
	if err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(clickAllJS, quoted), &clicked)); err != nil {
		return 0, fmt.Errorf("chromedp click %s: %w", selector, err)
	}
	if clicked > 0 && s.opts.ClickSettle > 0 {
		if err := chromedp.Run(ctx, chromedp.Sleep(s.opts.ClickSettle)); err != nil {
			return clicked, err
		}
	}
	return clicked, nil
}

func (s *ChromeSession) HTML() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("chromedp outer html: %w", err)
	}
	return html, nil
}

// Close shuts the tab and then the browser process.
func (s *ChromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
