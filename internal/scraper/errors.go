package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrNavigationFailed       = errors.New("search navigation failed")
	ErrProductNotFound        = errors.New("product detail page not found")
	ErrLeadTimeButtonNotFound = errors.New("lead time button not found")
	ErrQuantityInputFailed    = errors.New("quantity input failed")
	ErrUpdateButtonNotFound   = errors.New("update button not found")
	ErrNoLeadTimeData         = errors.New("no lead time data")
)

// Stage names one step of the per-part workflow.
type Stage string

const (
	StageSearch       Stage = "search"
	StageNavigate     Stage = "navigate"
	StageLeadTime     Stage = "lead_time_button"
	StageQuantity     Stage = "quantity"
	StageUpdate       Stage = "update"
	StageExtract      Stage = "extract"
	StageInterrupted  Stage = "interrupted"
	StageUnclassified Stage = "other"
)

var stageMessages = []struct {
	err     error
	stage   Stage
	message string
}{
	{ErrNavigationFailed, StageSearch, "Part not found"},
	{ErrProductNotFound, StageNavigate, "Navigation failed"},
	{ErrLeadTimeButtonNotFound, StageLeadTime, "Could not click lead time"},
	{ErrQuantityInputFailed, StageQuantity, "Could not enter quantity"},
	{ErrUpdateButtonNotFound, StageUpdate, "Could not click Update button"},
	{ErrNoLeadTimeData, StageExtract, "No lead time data"},
}

// ResultMessage is the text stored in a ScrapeResult for a stage failure.
func ResultMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range stageMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return err.Error()
}

// StageOf maps an error to the stage that produced it.
func StageOf(err error) Stage {
	for _, m := range stageMessages {
		if errors.Is(err, m.err) {
			return m.stage
		}
	}
	if errors.Is(err, errInterrupted) {
		return StageInterrupted
	}
	return StageUnclassified
}

var errInterrupted = errors.New("interrupted")

func interrupted(cause error) error {
	return fmt.Errorf("%w: %v", errInterrupted, cause)
}
