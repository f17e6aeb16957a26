package models

import (
	"time"
)

// ScrapeResult is the outcome of one part's workflow.
type ScrapeResult struct {
	PartNumber      string          `json:"part_number"`
	Success         bool            `json:"success"`
	InStock         bool            `json:"in_stock"`
	CurrentQuantity int             `json:"current_quantity"`
	LeadTimes       []LeadTimeEntry `json:"lead_times"`
	Error           string          `json:"error,omitempty"`
	Timestamp       string          `json:"timestamp"`
}

// LeadTimeEntry is one (quantity, ship date) row of a lead-time table.
// ShipDate is always in DD.MM.YYYY form.
type LeadTimeEntry struct {
	Qty      int    `json:"qty"`
	ShipDate string `json:"ship_date"`
	RawText  string `json:"raw_text"`
}

type StockStatus struct {
	InStock    bool   `json:"in_stock"`
	Quantity   int    `json:"quantity"`
	StatusText string `json:"status_text"`
}

// BatchReport aggregates the results of one run over a list of parts.
type BatchReport struct {
	RunID       string          `json:"run_id"`
	Parts       []string        `json:"parts"`
	Results     []*ScrapeResult `json:"results"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Interrupted bool            `json:"interrupted"`
}

func NewScrapeResult(partNumber string) *ScrapeResult {
	return &ScrapeResult{
		PartNumber: partNumber,
		LeadTimes:  make([]LeadTimeEntry, 0),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// Fail records the first failing stage. Later calls keep the original message.
func (r *ScrapeResult) Fail(message string) {
	r.Success = false
	if r.Error == "" {
		r.Error = message
	}
}

// Validate reports violations of the result invariants.
func (r *ScrapeResult) Validate() []string {
	var errors []string

	if r.PartNumber == "" {
		errors = append(errors, "part number is required")
	}

	if r.Success && !r.InStock && len(r.LeadTimes) == 0 {
		errors = append(errors, "successful result needs stock or lead times")
	}

	if !r.Success && r.Error == "" {
		errors = append(errors, "failed result needs an error")
	}

	if r.CurrentQuantity < 0 {
		errors = append(errors, "current quantity cannot be negative")
	}

	return errors
}

func (b *BatchReport) Elapsed() time.Duration {
	end := b.CompletedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(b.StartedAt)
}

func (b *BatchReport) Successful() int {
	n := 0
	for _, r := range b.Results {
		if r.Success {
			n++
		}
	}
	return n
}

func (b *BatchReport) Failed() int {
	return len(b.Results) - b.Successful()
}

// AveragePerPart divides the elapsed time across the requested parts.
func (b *BatchReport) AveragePerPart() time.Duration {
	if len(b.Parts) == 0 {
		return 0
	}
	return b.Elapsed() / time.Duration(len(b.Parts))
}
