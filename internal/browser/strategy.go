package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Strategy is one way of locating an element. Lists of strategies are tried
// in order and the first one that matches wins.
type Strategy struct {
	Name     string
	Selector string
}

// XPath builds a strategy from an XPath expression.
func XPath(name, expr string) Strategy {
	return Strategy{Name: name, Selector: "xpath=" + expr}
}

// XPathLiteral quotes s for use inside an XPath expression, falling back to
// concat() when s holds both quote characters.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// WaitClickable waits up to timeout per strategy for a visible, enabled
// element.
func (s *Session) WaitClickable(ctx context.Context, strategies []Strategy, timeout time.Duration) (playwright.Locator, Strategy, error) {
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, Strategy{}, err
		}

		loc, err := s.waitClickable(strategy, timeout)
		if err != nil {
			s.logger.Debug("strategy not clickable", "strategy", strategy.Name, "error", err)
			continue
		}
		return loc, strategy, nil
	}

	return nil, Strategy{}, fmt.Errorf("%w: none of %d strategies clickable", ErrNotFound, len(strategies))
}

// WaitPresent waits up to timeout per strategy for an element attached to the
// DOM, visible or not.
func (s *Session) WaitPresent(ctx context.Context, strategies []Strategy, timeout time.Duration) (playwright.Locator, Strategy, error) {
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, Strategy{}, err
		}

		loc := s.page.Locator(strategy.Selector).First()
		err := loc.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		})
		if err != nil {
			s.logger.Debug("strategy not present", "strategy", strategy.Name, "error", err)
			continue
		}
		return loc, strategy, nil
	}

	return nil, Strategy{}, fmt.Errorf("%w: none of %d strategies present", ErrNotFound, len(strategies))
}

// FindFirst checks each strategy once without waiting.
func (s *Session) FindFirst(strategies []Strategy) (playwright.Locator, Strategy, error) {
	for _, strategy := range strategies {
		loc := s.page.Locator(strategy.Selector)
		count, err := loc.Count()
		if err != nil || count == 0 {
			continue
		}
		return loc.First(), strategy, nil
	}

	return nil, Strategy{}, fmt.Errorf("%w: none of %d strategies matched", ErrNotFound, len(strategies))
}

// FindAll returns every element currently matching strategy.
func (s *Session) FindAll(strategy Strategy) ([]playwright.Locator, error) {
	return s.page.Locator(strategy.Selector).All()
}

// WaitVisible waits for loc to become visible.
func (s *Session) WaitVisible(loc playwright.Locator, timeout time.Duration) error {
	return loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (s *Session) waitClickable(strategy Strategy, timeout time.Duration) (playwright.Locator, error) {
	loc := s.page.Locator(strategy.Selector).First()

	if err := s.WaitVisible(loc, timeout); err != nil {
		return nil, err
	}

	enabled, err := loc.IsEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, fmt.Errorf("%s is disabled", strategy.Name)
	}

	return loc, nil
}
