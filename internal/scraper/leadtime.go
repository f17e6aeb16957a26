package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maltedev/leadtime-scraper/internal/browser"
	"github.com/maltedev/leadtime-scraper/internal/config"
	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/playwright-community/playwright-go"
)

var tableStrategy = []browser.Strategy{{Name: "table", Selector: "table"}}

// OpenLeadTime clicks the "Check Lead Time" control. When no strategy turns
// up a clickable element it scrolls further down and tries once more
// without waiting.
func (f *Storefront) OpenLeadTime(ctx context.Context) error {
	f.logger.Info("opening lead time dialog")

	f.session.ScrollToFraction(0.5)
	if err := f.pause(ctx, time.Second); err != nil {
		return err
	}

	button, strategy, err := f.session.WaitClickable(ctx, leadTimeStrategies, f.cfg.WaitTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx.Err())
		}

		f.logger.Warn("lead time button not visible, scrolling further")
		for i := 0; i < 5; i++ {
			f.session.ScrollBy(300)
			if err := f.pause(ctx, 300*time.Millisecond); err != nil {
				return err
			}
		}

		button, strategy, err = f.session.FindFirst(leadTimeStrategies)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLeadTimeButtonNotFound, err)
		}
	}

	f.logger.Info("found lead time button", "strategy", strategy.Name)

	f.session.ScrollIntoView(ctx, button)
	if err := f.session.Click(button, f.cfg.WaitTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrLeadTimeButtonNotFound, err)
	}

	return f.pause(ctx, 1500*time.Millisecond)
}

// EnterQuantity replaces the contents of the dialog's quantity field with
// quantity and checks what the page ended up holding.
func (f *Storefront) EnterQuantity(ctx context.Context, quantity int) error {
	expected := strconv.Itoa(quantity)
	f.logger.Info("entering quantity", "quantity", expected, "mode", f.cfg.InputMode)

	if err := f.pause(ctx, time.Second); err != nil {
		return err
	}

	input, strategy, err := f.session.WaitPresent(ctx, quantityInputStrategies, f.cfg.InputTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx.Err())
		}
		return fmt.Errorf("%w: input field not found: %v", ErrQuantityInputFailed, err)
	}
	f.logger.Debug("found quantity input", "strategy", strategy.Name)

	if err := f.session.WaitVisible(input, f.cfg.VisibilityTimeout); err != nil {
		f.logger.Warn("quantity input may not be visible", "error", err)
	}

	if current, err := input.InputValue(); err == nil {
		f.logger.Debug("current input value", "value", current)
	}

	if err := f.typeQuantity(ctx, input, expected); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx.Err())
		}
		f.screenshot("typing_error")
		return fmt.Errorf("%w: %v", ErrQuantityInputFailed, err)
	}

	final, err := input.InputValue()
	if err != nil {
		return fmt.Errorf("%w: reading value back: %v", ErrQuantityInputFailed, err)
	}

	if !quantityMatches(final, expected) {
		f.screenshot("qty_mismatch")
		return fmt.Errorf("%w: expected %s, field holds %q", ErrQuantityInputFailed, expected, final)
	}

	f.logger.Info("quantity entered", "value", final)
	return nil
}

func (f *Storefront) typeQuantity(ctx context.Context, input playwright.Locator, value string) error {
	if err := input.Click(); err != nil {
		return fmt.Errorf("focusing input: %w", err)
	}
	if err := f.pause(ctx, 300*time.Millisecond); err != nil {
		return err
	}

	if err := input.Press("Control+a"); err != nil {
		return fmt.Errorf("selecting contents: %w", err)
	}
	if err := f.pause(ctx, 100*time.Millisecond); err != nil {
		return err
	}
	if err := input.Press("Backspace"); err != nil {
		return fmt.Errorf("clearing contents: %w", err)
	}
	if err := f.pause(ctx, 300*time.Millisecond); err != nil {
		return err
	}

	switch f.cfg.InputMode {
	case config.InputModeFill:
		if err := input.Fill(value); err != nil {
			return fmt.Errorf("filling value: %w", err)
		}
	default:
		for i, ch := range value {
			if err := input.Press(string(ch)); err != nil {
				return fmt.Errorf("typing %q: %w", ch, err)
			}
			if err := f.pause(ctx, f.cfg.KeystrokeDelay); err != nil {
				return err
			}
			if (i+1)%3 == 0 {
				f.logger.Debug("typing progress", "typed", value[:i+1])
			}
		}
	}

	if err := f.pause(ctx, 500*time.Millisecond); err != nil {
		return err
	}

	// blur so the page commits the value
	if err := input.Press("Tab"); err != nil {
		return fmt.Errorf("leaving input: %w", err)
	}
	return f.pause(ctx, 500*time.Millisecond)
}

// SubmitLeadTime clicks the dialog's Update button.
func (f *Storefront) SubmitLeadTime(ctx context.Context) error {
	f.logger.Info("submitting lead time request")

	button, strategy, err := f.session.WaitClickable(ctx, updateStrategies, f.cfg.UpdateTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrUpdateButtonNotFound, err)
	}

	f.session.ScrollIntoView(ctx, button)
	if err := f.session.Click(button, f.cfg.UpdateTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateButtonNotFound, err)
	}
	f.logger.Info("clicked update", "strategy", strategy.Name)

	return f.pause(ctx, 2*time.Second)
}

// ExtractLeadTimes parses the first lead-time table on the page. It returns an
// empty slice when no table shows up in time.
func (f *Storefront) ExtractLeadTimes(ctx context.Context) []models.LeadTimeEntry {
	entries := make([]models.LeadTimeEntry, 0)

	if _, _, err := f.session.WaitPresent(ctx, tableStrategy, f.cfg.WaitTimeout); err != nil {
		f.logger.Warn("no lead time table appeared", "error", err)
		return entries
	}

	if err := browser.Sleep(ctx, time.Second); err != nil {
		return entries
	}

	content, err := f.session.Content()
	if err != nil {
		f.logger.Error("lead time extraction error", "error", err)
		return entries
	}

	parsed, err := f.parser.ExtractLeadTimes(content)
	if err != nil {
		f.logger.Error("lead time extraction error", "error", err)
		return entries
	}

	for _, e := range parsed {
		f.logger.Info("lead time", "qty", e.Qty, "ship_date", e.ShipDate)
	}
	f.metrics.AddEntries(len(parsed))

	return append(entries, parsed...)
}

var quantityNoise = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "")

// quantityMatches accepts a field value that, with grouping separators
// removed, equals or contains the expected digits.
func quantityMatches(value, expected string) bool {
	clean := quantityNoise.Replace(strings.TrimSpace(value))
	return clean == expected || strings.Contains(clean, expected)
}
