package scraper

import (
	"context"
	"io"
	"log/slog"

	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockStages struct {
	mock.Mock
}

func (m *mockStages) Search(ctx context.Context, partNumber string) error {
	return m.Called(ctx, partNumber).Error(0)
}

func (m *mockStages) NavigateToProduct(ctx context.Context, partNumber string) error {
	return m.Called(ctx, partNumber).Error(0)
}

func (m *mockStages) CheckStock(ctx context.Context) models.StockStatus {
	return m.Called(ctx).Get(0).(models.StockStatus)
}

func (m *mockStages) OpenLeadTime(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStages) EnterQuantity(ctx context.Context, quantity int) error {
	return m.Called(ctx, quantity).Error(0)
}

func (m *mockStages) SubmitLeadTime(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStages) ExtractLeadTimes(ctx context.Context) []models.LeadTimeEntry {
	args := m.Called(ctx)
	if entries, ok := args.Get(0).([]models.LeadTimeEntry); ok {
		return entries
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var outOfStock = models.StockStatus{InStock: false, Quantity: 0, StatusText: "Out of Stock"}

// reachable sets up every stage up to and including the stock check.
func reachable(m *mockStages, part string, stock models.StockStatus) {
	m.On("Search", mock.Anything, part).Return(nil).Once()
	m.On("NavigateToProduct", mock.Anything, part).Return(nil).Once()
	m.On("CheckStock", mock.Anything).Return(stock).Once()
}
