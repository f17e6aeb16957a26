package browser

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// HumanDelay sleeps for a random duration in [min, max).
func HumanDelay(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, RandomDuration(min, max))
}

func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// ScrollIntoView centers loc in the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, loc playwright.Locator) {
	if _, err := loc.Evaluate(`el => el.scrollIntoView({behavior: 'smooth', block: 'center'})`, nil); err != nil {
		s.logger.Debug("scroll error", "error", err)
	}
	_ = Sleep(ctx, 300*time.Millisecond)
}

// ScrollBy scrolls the window vertically by dy pixels.
func (s *Session) ScrollBy(dy int) {
	if _, err := s.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy)); err != nil {
		s.logger.Debug("scroll error", "error", err)
	}
}

// ScrollToFraction scrolls to the given fraction of the document height.
func (s *Session) ScrollToFraction(fraction float64) {
	script := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %g)", fraction)
	if _, err := s.page.Evaluate(script); err != nil {
		s.logger.Debug("scroll error", "error", err)
	}
}

// Click tries a native click first and falls back to a script click, which
// ignores overlays that intercept pointer events.
func (s *Session) Click(loc playwright.Locator, timeout time.Duration) error {
	err := loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return nil
	}

	s.logger.Debug("native click failed, using script click", "error", err)
	if _, jsErr := loc.Evaluate(`el => el.click()`, nil); jsErr != nil {
		return fmt.Errorf("click failed: %v; script click failed: %w", err, jsErr)
	}
	return nil
}
