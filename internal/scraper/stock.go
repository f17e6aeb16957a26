package scraper

import (
	"context"

	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/maltedev/leadtime-scraper/internal/parser"
)

// CheckStock classifies the current page. It never fails: an unreadable page
// is reported as Unknown and out of stock.
func (f *Storefront) CheckStock(ctx context.Context) (status models.StockStatus) {
	f.logger.Info("checking stock")

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("stock check error", "error", r)
			status = parser.UnknownStock()
		}
	}()

	content, err := f.session.Content()
	if err != nil {
		f.logger.Error("stock check error", "error", err)
		return parser.UnknownStock()
	}

	status = f.parser.ClassifyStock(content)
	f.logger.Info("stock status", "in_stock", status.InStock, "quantity", status.Quantity, "status", status.StatusText)
	return status
}
