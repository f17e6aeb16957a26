package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrDriverInit wraps every failure while bringing the browser up.
	ErrDriverInit = errors.New("driver initialization failed")
	ErrNotFound   = errors.New("element not found")
)

// hideAutomationScript runs before any page script and removes the most
// common automation fingerprints.
const hideAutomationScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = window.chrome || { runtime: {} };
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
`

type Options struct {
	Headless        bool
	PageLoadTimeout time.Duration
	UserAgents      []string
	ViewportWidth   int
	ViewportHeight  int
	AcceptLanguage  string
	TimezoneID      string
	Locale          string
	ProxyServer     string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:        true,
		PageLoadTimeout: 120 * time.Second,
		UserAgents: []string{
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9,de;q=0.8",
		TimezoneID:     "Europe/Berlin",
		Locale:         "en-US",
	}
}

// PickUserAgent returns a random entry of the pool.
func PickUserAgent(pool []string) string {
	if len(pool) == 0 {
		return DefaultOptions().UserAgents[0]
	}
	return pool[rand.Intn(len(pool))]
}

// Session owns one browser process with a single page. It is not safe for
// concurrent use; the workflow drives it from one goroutine.
type Session struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	page      playwright.Page
	opts      *Options
	userAgent string
	logger    *slog.Logger

	cookiesHandled bool
	closeOnce      sync.Once
}

// Open launches the browser. Anything that fails here is wrapped in
// ErrDriverInit and the partially started resources are released.
func Open(opts *Options, logger *slog.Logger) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		opts:      opts,
		userAgent: PickUserAgent(opts.UserAgents),
		logger:    logger.With("component", "browser"),
	}

	if err := s.start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrDriverInit, err)
	}

	s.logger.Info("driver initialized", "headless", opts.Headless, "user_agent", s.userAgent)
	return s, nil
}

func (s *Session) start() error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	s.pw = pw

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			fmt.Sprintf("--window-size=%d,%d", s.opts.ViewportWidth, s.opts.ViewportHeight),
			"--start-maximized",
			"--user-agent=" + s.userAgent,
		},
	}

	if s.opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{
			Server: s.opts.ProxyServer,
		}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	s.browser = browser

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(s.userAgent),
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            playwright.String(s.opts.Locale),
		TimezoneId:        playwright.String(s.opts.TimezoneID),
		Viewport: &playwright.Size{
			Width:  s.opts.ViewportWidth,
			Height: s.opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": s.opts.AcceptLanguage,
		},
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		return fmt.Errorf("failed to create browser context: %w", err)
	}
	s.context = bctx

	if err := bctx.AddInitScript(playwright.Script{
		Content: playwright.String(hideAutomationScript),
	}); err != nil {
		return fmt.Errorf("failed to install init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(s.opts.PageLoadTimeout.Milliseconds()))
	s.page = page

	return nil
}

// Close releases the page, context, browser and driver. It may be called on a
// nil or partially opened session and more than once. Teardown errors are
// logged, never returned.
func (s *Session) Close() {
	if s == nil {
		return
	}

	s.closeOnce.Do(func() {
		var errs []error

		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close page: %w", err))
			}
		}

		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}

		if len(errs) > 0 {
			s.logger.Warn("errors during close", "error", errors.Join(errs...))
			return
		}

		s.logger.Info("driver closed")
	})
}

// NavigateWithRetry loads url, waiting delay between failed attempts. It
// returns the number of attempts made.
func (s *Session) NavigateWithRetry(ctx context.Context, url string, attempts int, delay time.Duration) (int, error) {
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			s.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			if err := Sleep(ctx, delay); err != nil {
				return i, err
			}
		}

		_, err := s.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.opts.PageLoadTimeout.Milliseconds())),
		})
		if err == nil {
			return i + 1, nil
		}

		lastErr = err
		if errors.Is(err, playwright.ErrTimeout) {
			s.logger.Warn("navigation timed out", "attempt", i+1, "max", attempts)
		} else {
			s.logger.Error("navigation failed", "error", err, "attempt", i+1, "max", attempts)
		}
	}

	return attempts, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (s *Session) Title() (string, error) {
	return s.page.Title()
}

func (s *Session) Content() (string, error) {
	return s.page.Content()
}

func (s *Session) URL() string {
	return s.page.URL()
}

// CookiesHandled reports whether the banner step already ran in this session.
func (s *Session) CookiesHandled() bool {
	return s.cookiesHandled
}

// AcceptCookies clicks the first matching consent button. It runs once per
// session: the latch is set after the first attempt whether or not a banner
// was found, so later parts skip the lookup.
func (s *Session) AcceptCookies(ctx context.Context, strategies []Strategy, timeout time.Duration) bool {
	if s.cookiesHandled {
		return true
	}
	s.cookiesHandled = true

	s.logger.Info("looking for cookie banner")
	if err := Sleep(ctx, 500*time.Millisecond); err != nil {
		return false
	}

	for _, strategy := range strategies {
		if ctx.Err() != nil {
			return false
		}

		loc, err := s.waitClickable(strategy, timeout)
		if err != nil {
			continue
		}

		if err := loc.Click(); err != nil {
			s.logger.Debug("cookie button click failed", "strategy", strategy.Name, "error", err)
			continue
		}

		s.logger.Info("accepted cookies", "strategy", strategy.Name)
		_ = Sleep(ctx, 300*time.Millisecond)
		return true
	}

	s.logger.Info("no cookie banner found")
	return false
}

// Screenshot saves a full page PNG named <prefix>_<unix>.png in dir.
func (s *Session) Screenshot(dir, prefix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", prefix, time.Now().Unix()))

	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}

	s.logger.Info("screenshot saved", "path", path)
	return path, nil
}
