package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maltedev/leadtime-scraper/internal/browser"
	"github.com/maltedev/leadtime-scraper/internal/config"
	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/maltedev/leadtime-scraper/internal/parser"
)

// Stages is the per-part workflow as seen by the orchestrator. Each method is
// one stage with its own timeouts; none of them shares a deadline.
type Stages interface {
	Search(ctx context.Context, partNumber string) error
	NavigateToProduct(ctx context.Context, partNumber string) error
	CheckStock(ctx context.Context) models.StockStatus
	OpenLeadTime(ctx context.Context) error
	EnterQuantity(ctx context.Context, quantity int) error
	SubmitLeadTime(ctx context.Context) error
	ExtractLeadTimes(ctx context.Context) []models.LeadTimeEntry
}

// Storefront drives the distributor's web shop through a browser session.
type Storefront struct {
	session *browser.Session
	parser  parser.Parser
	cfg     config.ScraperConfig
	// detail page URLs resolved earlier in this process, keyed by part
	// number; nil when the cache is off
	detailURLs *lru.Cache[string, string]
	metrics    *Metrics
	logger     *slog.Logger
}

func NewStorefront(session *browser.Session, cfg config.ScraperConfig, metrics *Metrics, logger *slog.Logger) (*Storefront, error) {
	f := &Storefront{
		session: session,
		parser:  parser.NewStorefrontParser(),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With("component", "storefront"),
	}

	if cfg.URLCacheSize > 0 {
		cache, err := lru.New[string, string](cfg.URLCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create detail URL cache: %w", err)
		}
		f.detailURLs = cache
	}

	return f, nil
}

func (f *Storefront) cachedDetailURL(partNumber string) (string, bool) {
	if f.detailURLs == nil {
		return "", false
	}
	return f.detailURLs.Get(partNumber)
}

func (f *Storefront) rememberDetailURL(partNumber, url string) {
	if f.detailURLs != nil {
		f.detailURLs.Add(partNumber, url)
	}
}

// SearchURL substitutes the part number into the configured template.
func (f *Storefront) SearchURL(partNumber string) string {
	return BuildSearchURL(f.cfg.SearchURL, partNumber)
}

func BuildSearchURL(template, partNumber string) string {
	return strings.ReplaceAll(template, config.PartPlaceholder, partNumber)
}

func (f *Storefront) pause(ctx context.Context, d time.Duration) error {
	if err := browser.Sleep(ctx, d); err != nil {
		return interrupted(err)
	}
	return nil
}

// screenshot is a debugging aid only; failures are logged and dropped.
func (f *Storefront) screenshot(prefix string) {
	if _, err := f.session.Screenshot(f.cfg.ScreenshotDir, prefix); err != nil {
		f.logger.Debug("screenshot not saved", "error", err)
	}
}
