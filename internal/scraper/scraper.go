package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/maltedev/leadtime-scraper/internal/ratelimit"
)

const (
	OutcomeInStock  = "in_stock"
	OutcomeLeadTime = "lead_time"
	OutcomeFailed   = "failed"
)

type Options struct {
	// ProbeQuantity is typed into the lead-time dialog. It is chosen larger
	// than any real stock so the page answers with a full schedule.
	ProbeQuantity int
	PartPause     time.Duration
}

// Scraper runs the per-part workflow over a Stages implementation and
// collects the results of a batch.
type Scraper struct {
	stages  Stages
	opts    Options
	pacer   ratelimit.RateLimiter
	metrics *Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	current *models.BatchReport
}

func New(stages Stages, opts Options, metrics *Metrics, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		stages:  stages,
		opts:    opts,
		pacer:   ratelimit.NewSimpleRateLimiter(opts.PartPause, opts.PartPause),
		metrics: metrics,
		logger:  logger.With("component", "scraper"),
	}
}

// Scrape processes one part. It never returns nil and never panics; every
// failure is reported on the result.
func (s *Scraper) Scrape(ctx context.Context, partNumber string) (result *models.ScrapeResult) {
	result = models.NewScrapeResult(partNumber)
	log := s.logger.With("part_number", partNumber)
	start := time.Now()

	log.Info("processing part")

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected error", "panic", r)
			result.Success = false
			result.Fail(fmt.Sprintf("unexpected error: %v", r))
			s.metrics.IncStageFailure(StageUnclassified)
		}
		s.record(result, time.Since(start))
	}()

	if err := s.run(ctx, result); err != nil {
		stage := StageOf(err)
		result.Fail(ResultMessage(err))
		s.metrics.IncStageFailure(stage)
		log.Warn("part failed", "stage", stage, "error", err)
	}

	return result
}

func (s *Scraper) run(ctx context.Context, result *models.ScrapeResult) error {
	part := result.PartNumber

	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}

	if err := classify(s.stages.Search(ctx, part), ErrNavigationFailed); err != nil {
		return err
	}

	if err := classify(s.stages.NavigateToProduct(ctx, part), ErrProductNotFound); err != nil {
		return err
	}

	stock := s.stages.CheckStock(ctx)
	result.InStock = stock.InStock
	result.CurrentQuantity = stock.Quantity

	if stock.InStock {
		result.Success = true
		return nil
	}

	if err := classify(s.stages.OpenLeadTime(ctx), ErrLeadTimeButtonNotFound); err != nil {
		return err
	}

	if err := classify(s.stages.EnterQuantity(ctx, s.opts.ProbeQuantity), ErrQuantityInputFailed); err != nil {
		return err
	}

	if err := classify(s.stages.SubmitLeadTime(ctx), ErrUpdateButtonNotFound); err != nil {
		return err
	}

	entries := s.stages.ExtractLeadTimes(ctx)
	if len(entries) == 0 {
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
		return ErrNoLeadTimeData
	}

	result.LeadTimes = entries
	result.Success = true
	return nil
}

// classify attributes an error that carries no stage of its own to the stage
// that returned it.
func classify(err, stage error) error {
	if err == nil {
		return nil
	}
	if StageOf(err) != StageUnclassified {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return interrupted(err)
	}
	return fmt.Errorf("%w: %v", stage, err)
}

func (s *Scraper) record(result *models.ScrapeResult, elapsed time.Duration) {
	outcome := OutcomeFailed
	switch {
	case result.Success && result.InStock:
		outcome = OutcomeInStock
	case result.Success:
		outcome = OutcomeLeadTime
	}

	s.metrics.IncPart(outcome)
	s.metrics.ObserveDuration(elapsed)

	s.logger.Info("part finished",
		"part_number", result.PartNumber,
		"outcome", outcome,
		"duration", elapsed.Round(time.Millisecond),
	)
}

// RunBatch processes parts in order, pausing between them. onResult, when
// set, sees each result as soon as it is ready. Cancelling ctx stops the
// batch after the current stage and marks the report Interrupted, unless
// every part had already completed.
func (s *Scraper) RunBatch(ctx context.Context, parts []string, onResult func(*models.ScrapeResult)) *models.BatchReport {
	report := &models.BatchReport{
		RunID:     uuid.NewString(),
		Parts:     append([]string(nil), parts...),
		Results:   make([]*models.ScrapeResult, 0, len(parts)),
		StartedAt: time.Now(),
	}
	s.setCurrent(report)

	log := s.logger.With("run_id", report.RunID)
	log.Info("starting batch", "parts", len(parts))

	// set only when a part was skipped or cut short, not when the signal
	// arrives after the last part finished
	interrupted := false

	for i, part := range parts {
		if err := s.pacer.Wait(ctx); err != nil {
			interrupted = true
			break
		}
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		log.Info("part", "index", i+1, "total", len(parts), "part_number", part)
		result := s.Scrape(ctx, part)
		s.pacer.Touch()

		if !result.Success && ctx.Err() != nil {
			interrupted = true
		}

		s.appendResult(result)
		if onResult != nil {
			onResult(result)
		}
	}

	s.mu.Lock()
	report.Interrupted = interrupted
	report.CompletedAt = time.Now()
	s.mu.Unlock()

	if report.Interrupted {
		log.Warn("batch interrupted", "completed", len(report.Results), "total", len(parts))
	}
	log.Info("batch finished",
		"successful", report.Successful(),
		"failed", report.Failed(),
		"elapsed", report.Elapsed().Round(time.Millisecond),
	)

	return report
}

func (s *Scraper) setCurrent(report *models.BatchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = report
}

func (s *Scraper) appendResult(result *models.ScrapeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Results = append(s.current.Results, result)
}

// Snapshot returns a copy of the batch in progress, or the last finished
// one. It returns nil before the first batch starts.
func (s *Scraper) Snapshot() *models.BatchReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}

	snapshot := *s.current
	snapshot.Parts = append([]string(nil), s.current.Parts...)
	snapshot.Results = append([]*models.ScrapeResult(nil), s.current.Results...)
	return &snapshot
}
