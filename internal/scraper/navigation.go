package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maltedev/leadtime-scraper/internal/browser"
	"github.com/playwright-community/playwright-go"
)

var bodyStrategy = []browser.Strategy{{Name: "body", Selector: "body"}}

// Search opens the results page for partNumber. With the detail URL cache
// enabled, a part resolved earlier in the run goes straight to its detail
// page instead.
func (f *Storefront) Search(ctx context.Context, partNumber string) error {
	target := f.SearchURL(partNumber)
	if detailURL, ok := f.cachedDetailURL(partNumber); ok {
		f.logger.Info("using cached detail page", "part_number", partNumber, "url", detailURL)
		target = detailURL
	}

	f.logger.Info("searching", "part_number", partNumber, "url", target)

	attempts, err := f.session.NavigateWithRetry(ctx, target, f.cfg.MaxAttempts, f.cfg.RetryDelay)
	f.metrics.AddRetries(attempts - 1)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrNavigationFailed, err)
	}

	if err := f.pause(ctx, time.Second); err != nil {
		return err
	}

	f.session.AcceptCookies(ctx, cookieStrategies, f.cfg.CookieTimeout)

	if err := f.pause(ctx, 500*time.Millisecond); err != nil {
		return err
	}

	title, err := f.session.Title()
	if err != nil {
		return fmt.Errorf("%w: reading title: %v", ErrNavigationFailed, err)
	}
	f.logger.Info("page loaded", "title", title)

	if _, _, err := f.session.WaitPresent(ctx, bodyStrategy, f.cfg.WaitTimeout); err != nil {
		return fmt.Errorf("%w: page body missing: %v", ErrNavigationFailed, err)
	}

	content, err := f.session.Content()
	if err != nil {
		return fmt.Errorf("%w: reading content: %v", ErrNavigationFailed, err)
	}

	if isNotFoundPage(title, content) {
		return fmt.Errorf("%w: 404 page for %s", ErrNavigationFailed, partNumber)
	}

	return nil
}

// NavigateToProduct resolves the current page to the part's detail page.
func (f *Storefront) NavigateToProduct(ctx context.Context, partNumber string) error {
	f.logger.Info("finding product", "part_number", partNumber)

	if err := f.pause(ctx, 500*time.Millisecond); err != nil {
		return err
	}

	content, err := f.session.Content()
	if err != nil {
		return fmt.Errorf("%w: reading content: %v", ErrProductNotFound, err)
	}

	current := f.session.URL()
	if isDetailURL(current, f.cfg.DetailPath) && strings.Contains(strings.ToLower(content), strings.ToLower(partNumber)) {
		f.logger.Info("already on product detail page", "url", current)
		f.rememberDetailURL(partNumber, current)
		return nil
	}

	f.session.ScrollBy(300)
	if err := f.pause(ctx, 500*time.Millisecond); err != nil {
		return err
	}

	link, href, err := f.findProductLink(ctx, partNumber)
	if err != nil {
		return err
	}

	f.session.ScrollIntoView(ctx, link)
	if err := browser.HumanDelay(ctx, 200*time.Millisecond, 600*time.Millisecond); err != nil {
		return interrupted(err)
	}

	f.logger.Info("clicking product link", "href", href)
	if err := f.session.Click(link, f.cfg.WaitTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}

	if err := f.pause(ctx, 2*time.Second); err != nil {
		return err
	}

	landed := f.session.URL()
	if !isDetailURL(landed, f.cfg.DetailPath) {
		return fmt.Errorf("%w: not on detail page after click: %s", ErrProductNotFound, landed)
	}

	f.logger.Info("navigated to product", "url", landed)
	f.rememberDetailURL(partNumber, landed)
	return nil
}

// findProductLink returns the first link, in strategy order and then
// document order, whose text or href contains the part number.
func (f *Storefront) findProductLink(ctx context.Context, partNumber string) (playwright.Locator, string, error) {
	for _, strategy := range productLinkStrategies(partNumber, f.cfg.DetailPath) {
		if err := ctx.Err(); err != nil {
			return nil, "", interrupted(err)
		}

		links, err := f.session.FindAll(strategy)
		if err != nil {
			f.logger.Debug("strategy failed", "strategy", strategy.Name, "error", err)
			continue
		}
		f.logger.Debug("candidate links", "strategy", strategy.Name, "count", len(links))

		for _, link := range links {
			text, _ := link.InnerText()
			href, _ := link.GetAttribute("href")

			if matchesPart(text, href, partNumber) {
				f.logger.Info("found matching link", "strategy", strategy.Name, "text", truncate(text, 50))
				return link, href, nil
			}
		}
	}

	return nil, "", fmt.Errorf("%w: no link for %s in search results", ErrProductNotFound, partNumber)
}

func isDetailURL(url, detailPath string) bool {
	return strings.Contains(url, detailPath)
}

func isNotFoundPage(title, content string) bool {
	return strings.Contains(title, "404") || strings.Contains(strings.ToLower(content), "not found")
}

func matchesPart(text, href, partNumber string) bool {
	part := strings.ToUpper(partNumber)
	return strings.Contains(strings.ToUpper(text), part) || strings.Contains(strings.ToUpper(href), part)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
