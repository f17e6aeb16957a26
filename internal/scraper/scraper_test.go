package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const dialogQuantity = 9999999

func newTestScraper(stages Stages, metrics *Metrics) *Scraper {
	return New(stages, Options{ProbeQuantity: dialogQuantity}, metrics, discardLogger())
}

func TestScrapeInStockSkipsLeadTime(t *testing.T) {
	stages := new(mockStages)
	reachable(stages, "AD5412AREZ", models.StockStatus{InStock: true, Quantity: 1234, StatusText: "1234 In Stock"})

	result := newTestScraper(stages, nil).Scrape(context.Background(), "AD5412AREZ")

	assert.True(t, result.Success)
	assert.True(t, result.InStock)
	assert.Equal(t, 1234, result.CurrentQuantity)
	assert.Empty(t, result.LeadTimes)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.Validate())

	stages.AssertExpectations(t)
	stages.AssertNotCalled(t, "OpenLeadTime", mock.Anything)
	stages.AssertNotCalled(t, "EnterQuantity", mock.Anything, mock.Anything)
	stages.AssertNotCalled(t, "SubmitLeadTime", mock.Anything)
	stages.AssertNotCalled(t, "ExtractLeadTimes", mock.Anything)
}

func TestScrapeOutOfStockCollectsLeadTimes(t *testing.T) {
	entries := []models.LeadTimeEntry{
		{Qty: 100, ShipDate: "15.03.2025", RawText: "QTY: 100, Date: 15.03.2025"},
		{Qty: 500, ShipDate: "01.04.2025", RawText: "QTY: 500, Date: 01.04.2025"},
	}

	stages := new(mockStages)
	reachable(stages, "ADXL355BEZ", outOfStock)
	stages.On("OpenLeadTime", mock.Anything).Return(nil).Once()
	stages.On("EnterQuantity", mock.Anything, dialogQuantity).Return(nil).Once()
	stages.On("SubmitLeadTime", mock.Anything).Return(nil).Once()
	stages.On("ExtractLeadTimes", mock.Anything).Return(entries).Once()

	result := newTestScraper(stages, nil).Scrape(context.Background(), "ADXL355BEZ")

	require.True(t, result.Success)
	assert.False(t, result.InStock)
	assert.Zero(t, result.CurrentQuantity)
	assert.Equal(t, entries, result.LeadTimes)
	assert.Empty(t, result.Validate())
	stages.AssertExpectations(t)
}

func TestScrapeSearchFailureStopsWorkflow(t *testing.T) {
	stages := new(mockStages)
	stages.On("Search", mock.Anything, "BOGUS-PART-XYZ").
		Return(fmt.Errorf("%w: 404 page", ErrNavigationFailed)).Once()

	result := newTestScraper(stages, nil).Scrape(context.Background(), "BOGUS-PART-XYZ")

	assert.False(t, result.Success)
	assert.Equal(t, "Part not found", result.Error)
	assert.False(t, result.InStock)
	assert.Empty(t, result.LeadTimes)

	stages.AssertExpectations(t)
	stages.AssertNotCalled(t, "NavigateToProduct", mock.Anything, mock.Anything)
	stages.AssertNotCalled(t, "CheckStock", mock.Anything)
}

func TestScrapeStageFailureMessages(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(m *mockStages)
		message string
	}{
		{
			name: "search with unclassified error",
			setup: func(m *mockStages) {
				m.On("Search", mock.Anything, "P").Return(boom)
			},
			message: "Part not found",
		},
		{
			name: "navigate",
			setup: func(m *mockStages) {
				m.On("Search", mock.Anything, "P").Return(nil)
				m.On("NavigateToProduct", mock.Anything, "P").Return(boom)
			},
			message: "Navigation failed",
		},
		{
			name: "lead time button",
			setup: func(m *mockStages) {
				reachable(m, "P", outOfStock)
				m.On("OpenLeadTime", mock.Anything).Return(boom)
			},
			message: "Could not click lead time",
		},
		{
			name: "quantity",
			setup: func(m *mockStages) {
				reachable(m, "P", outOfStock)
				m.On("OpenLeadTime", mock.Anything).Return(nil)
				m.On("EnterQuantity", mock.Anything, dialogQuantity).Return(boom)
			},
			message: "Could not enter quantity",
		},
		{
			name: "update",
			setup: func(m *mockStages) {
				reachable(m, "P", outOfStock)
				m.On("OpenLeadTime", mock.Anything).Return(nil)
				m.On("EnterQuantity", mock.Anything, dialogQuantity).Return(nil)
				m.On("SubmitLeadTime", mock.Anything).Return(boom)
			},
			message: "Could not click Update button",
		},
		{
			name: "empty table",
			setup: func(m *mockStages) {
				reachable(m, "P", outOfStock)
				m.On("OpenLeadTime", mock.Anything).Return(nil)
				m.On("EnterQuantity", mock.Anything, dialogQuantity).Return(nil)
				m.On("SubmitLeadTime", mock.Anything).Return(nil)
				m.On("ExtractLeadTimes", mock.Anything).Return([]models.LeadTimeEntry{})
			},
			message: "No lead time data",
		},
		{
			name: "nil extraction",
			setup: func(m *mockStages) {
				reachable(m, "P", outOfStock)
				m.On("OpenLeadTime", mock.Anything).Return(nil)
				m.On("EnterQuantity", mock.Anything, dialogQuantity).Return(nil)
				m.On("SubmitLeadTime", mock.Anything).Return(nil)
				m.On("ExtractLeadTimes", mock.Anything).Return(nil)
			},
			message: "No lead time data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := new(mockStages)
			tt.setup(stages)

			result := newTestScraper(stages, nil).Scrape(context.Background(), "P")

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Error)
			assert.NotNil(t, result.LeadTimes)
			assert.Empty(t, result.Validate())
			stages.AssertExpectations(t)
		})
	}
}

func TestScrapeRecoversFromPanic(t *testing.T) {
	stages := new(mockStages)
	stages.On("Search", mock.Anything, "P").Return(nil)
	stages.On("NavigateToProduct", mock.Anything, "P").Run(func(mock.Arguments) {
		panic("page crashed")
	}).Return(nil)

	metrics := NewMetrics()
	result := newTestScraper(stages, metrics).Scrape(context.Background(), "P")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "page crashed")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PartsTotal.WithLabelValues(OutcomeFailed)))
}

func TestScrapeCancelledBeforeStart(t *testing.T) {
	stages := new(mockStages)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestScraper(stages, nil).Scrape(ctx, "P")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "interrupted")
	stages.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestScrapeRecordsMetrics(t *testing.T) {
	stages := new(mockStages)
	reachable(stages, "A", models.StockStatus{InStock: true, Quantity: 5})
	stages.On("Search", mock.Anything, "B").Return(errors.New("timeout"))

	metrics := NewMetrics()
	s := newTestScraper(stages, metrics)
	s.Scrape(context.Background(), "A")
	s.Scrape(context.Background(), "B")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PartsTotal.WithLabelValues(OutcomeInStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PartsTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StageFailuresTotal.WithLabelValues(string(StageSearch))))

	families, err := metrics.Registry.Gather()
	require.NoError(t, err)

	var observed uint64
	for _, f := range families {
		if f.GetName() == "leadtime_part_duration_seconds" {
			observed = f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), observed)
}

func TestRunBatch(t *testing.T) {
	stages := new(mockStages)
	reachable(stages, "A", models.StockStatus{InStock: true, Quantity: 10})
	stages.On("Search", mock.Anything, "B").Return(ErrNavigationFailed)
	reachable(stages, "C", models.StockStatus{InStock: true, Quantity: 3})

	s := newTestScraper(stages, nil)
	assert.Nil(t, s.Snapshot())

	var seen []string
	report := s.RunBatch(context.Background(), []string{"A", "B", "C"}, func(r *models.ScrapeResult) {
		seen = append(seen, r.PartNumber)
	})

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Interrupted)
	assert.Equal(t, []string{"A", "B", "C"}, seen)
	require.Len(t, report.Results, 3)
	assert.Equal(t, 2, report.Successful())
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.CompletedAt.Before(report.StartedAt))

	for _, r := range report.Results {
		assert.Empty(t, r.Validate(), r.PartNumber)
	}

	snapshot := s.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, report.RunID, snapshot.RunID)
	assert.Len(t, snapshot.Results, 3)
}

func TestRunBatchInterrupted(t *testing.T) {
	stages := new(mockStages)
	ctx, cancel := context.WithCancel(context.Background())

	stages.On("Search", mock.Anything, "A").Return(nil)
	stages.On("NavigateToProduct", mock.Anything, "A").Return(nil)
	stages.On("CheckStock", mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(models.StockStatus{InStock: true, Quantity: 1})

	report := newTestScraper(stages, nil).RunBatch(ctx, []string{"A", "B"}, nil)

	assert.True(t, report.Interrupted)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Success)
	stages.AssertNotCalled(t, "Search", mock.Anything, "B")
}

func TestRunBatchCancelAfterLastPartIsNotInterrupted(t *testing.T) {
	stages := new(mockStages)
	ctx, cancel := context.WithCancel(context.Background())

	stages.On("Search", mock.Anything, "A").Return(nil)
	stages.On("NavigateToProduct", mock.Anything, "A").Return(nil)
	stages.On("CheckStock", mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(models.StockStatus{InStock: true, Quantity: 1})

	report := newTestScraper(stages, nil).RunBatch(ctx, []string{"A"}, nil)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Success)
	assert.False(t, report.Interrupted)
}

func TestRunBatchLastPartCutShort(t *testing.T) {
	stages := new(mockStages)
	ctx, cancel := context.WithCancel(context.Background())

	stages.On("Search", mock.Anything, "A").Run(func(mock.Arguments) {
		cancel()
	}).Return(context.Canceled)

	report := newTestScraper(stages, nil).RunBatch(ctx, []string{"A"}, nil)

	require.Len(t, report.Results, 1)
	assert.Contains(t, report.Results[0].Error, "interrupted")
	assert.True(t, report.Interrupted)
	stages.AssertNotCalled(t, "NavigateToProduct", mock.Anything, mock.Anything)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil, ErrProductNotFound))

	wrapped := fmt.Errorf("%w: x", ErrUpdateButtonNotFound)
	assert.ErrorIs(t, classify(wrapped, ErrProductNotFound), ErrUpdateButtonNotFound)

	assert.ErrorIs(t, classify(errors.New("x"), ErrProductNotFound), ErrProductNotFound)
	assert.Equal(t, StageInterrupted, StageOf(classify(context.Canceled, ErrProductNotFound)))
}
