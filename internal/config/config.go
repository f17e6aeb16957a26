package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	InputModePerCharacter = "per-character"
	InputModeFill         = "fill"

	// PartPlaceholder is substituted with the part number in the search URL template.
	PartPlaceholder = "{part}"
)

type Config struct {
	Browser BrowserConfig
	Scraper ScraperConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

type BrowserConfig struct {
	Headless        bool
	PageLoadTimeout time.Duration
	ViewportWidth   int
	ViewportHeight  int
	AcceptLanguage  string
	TimezoneID      string
	Locale          string
	UserAgents      []string
	ProxyServer     string
}

type ScraperConfig struct {
	SearchURL         string
	DetailPath        string
	MaxAttempts       int
	RetryDelay        time.Duration
	WaitTimeout       time.Duration
	CookieTimeout     time.Duration
	InputTimeout      time.Duration
	VisibilityTimeout time.Duration
	UpdateTimeout     time.Duration
	ProbeQuantity     int
	InputMode         string
	KeystrokeDelay    time.Duration
	PartPause         time.Duration
	ScreenshotDir     string
	Parts             []string
	URLCacheSize      int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Browser: BrowserConfig{
			Headless:        getBoolOrDefault("BROWSER_HEADLESS", true),
			PageLoadTimeout: getDurationOrDefault("BROWSER_PAGE_LOAD_TIMEOUT", 120*time.Second),
			ViewportWidth:   getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:  getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage:  getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9,de;q=0.8"),
			TimezoneID:      getEnvOrDefault("BROWSER_TIMEZONE", "Europe/Berlin"),
			Locale:          getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			UserAgents:      getStringSliceOrDefault("BROWSER_USER_AGENTS", defaultUserAgents()),
			ProxyServer:     getEnvOrDefault("BROWSER_PROXY", ""),
		},
		Scraper: ScraperConfig{
			SearchURL:         getEnvOrDefault("SCRAPER_SEARCH_URL", "https://www.digikey.de/en/products/result?keywords="+PartPlaceholder),
			DetailPath:        getEnvOrDefault("SCRAPER_DETAIL_PATH", "/products/detail/"),
			MaxAttempts:       getIntOrDefault("SCRAPER_MAX_ATTEMPTS", 3),
			RetryDelay:        getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
			WaitTimeout:       getDurationOrDefault("SCRAPER_WAIT_TIMEOUT", 15*time.Second),
			CookieTimeout:     getDurationOrDefault("SCRAPER_COOKIE_TIMEOUT", 2*time.Second),
			InputTimeout:      getDurationOrDefault("SCRAPER_INPUT_TIMEOUT", 10*time.Second),
			VisibilityTimeout: getDurationOrDefault("SCRAPER_VISIBILITY_TIMEOUT", 5*time.Second),
			UpdateTimeout:     getDurationOrDefault("SCRAPER_UPDATE_TIMEOUT", 5*time.Second),
			ProbeQuantity:     getIntOrDefault("SCRAPER_PROBE_QUANTITY", 9999999),
			InputMode:         getEnvOrDefault("SCRAPER_INPUT_MODE", InputModePerCharacter),
			KeystrokeDelay:    getDurationOrDefault("SCRAPER_KEYSTROKE_DELAY", 60*time.Millisecond),
			PartPause:         getDurationOrDefault("SCRAPER_PART_PAUSE", 500*time.Millisecond),
			ScreenshotDir:     getEnvOrDefault("SCRAPER_SCREENSHOT_DIR", os.TempDir()),
			Parts:             getStringSliceOrDefault("SCRAPER_PARTS", DefaultParts()),
			URLCacheSize:      getIntOrDefault("SCRAPER_URL_CACHE_SIZE", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.Contains(c.Scraper.SearchURL, PartPlaceholder) {
		return fmt.Errorf("SCRAPER_SEARCH_URL must contain %s", PartPlaceholder)
	}

	parsed, err := url.Parse(strings.ReplaceAll(c.Scraper.SearchURL, PartPlaceholder, "x"))
	if err != nil {
		return fmt.Errorf("invalid SCRAPER_SEARCH_URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("SCRAPER_SEARCH_URL must include a host")
	}

	if c.Scraper.DetailPath == "" {
		return fmt.Errorf("SCRAPER_DETAIL_PATH cannot be empty")
	}

	if c.Scraper.MaxAttempts < 1 {
		return fmt.Errorf("SCRAPER_MAX_ATTEMPTS must be at least 1")
	}

	timeouts := map[string]time.Duration{
		"BROWSER_PAGE_LOAD_TIMEOUT":  c.Browser.PageLoadTimeout,
		"SCRAPER_WAIT_TIMEOUT":       c.Scraper.WaitTimeout,
		"SCRAPER_COOKIE_TIMEOUT":     c.Scraper.CookieTimeout,
		"SCRAPER_INPUT_TIMEOUT":      c.Scraper.InputTimeout,
		"SCRAPER_VISIBILITY_TIMEOUT": c.Scraper.VisibilityTimeout,
		"SCRAPER_UPDATE_TIMEOUT":     c.Scraper.UpdateTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Scraper.RetryDelay < 0 || c.Scraper.PartPause < 0 || c.Scraper.KeystrokeDelay < 0 {
		return fmt.Errorf("delays cannot be negative")
	}

	if c.Scraper.URLCacheSize < 0 {
		return fmt.Errorf("SCRAPER_URL_CACHE_SIZE cannot be negative")
	}

	if c.Scraper.ProbeQuantity < 1 {
		return fmt.Errorf("SCRAPER_PROBE_QUANTITY must be at least 1")
	}

	if c.Scraper.InputMode != InputModePerCharacter && c.Scraper.InputMode != InputModeFill {
		return fmt.Errorf("SCRAPER_INPUT_MODE must be %s or %s", InputModePerCharacter, InputModeFill)
	}

	if len(c.Browser.UserAgents) == 0 {
		return fmt.Errorf("BROWSER_USER_AGENTS cannot be empty")
	}

	if len(c.Scraper.Parts) == 0 {
		return fmt.Errorf("at least one part number is required")
	}

	return nil
}

// DefaultParts is the batch used when no part numbers are configured.
func DefaultParts() []string {
	return []string{
		"AD5412AREZ",
		"ADXL355BEZ",
		"CLA4603-085LF",
	}
}

// SplitParts turns a comma separated list into trimmed, non-empty part numbers.
func SplitParts(value string) []string {
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ReadPartsFile reads one part number per line. Blank lines and lines
// starting with # are skipped.
func ReadPartsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parts file: %w", err)
	}

	var parts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			parts = append(parts, line)
		}
	}
	return parts, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := SplitParts(value); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}
