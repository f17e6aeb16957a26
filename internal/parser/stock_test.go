package parser

import (
	"testing"

	"github.com/maltedev/leadtime-scraper/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.StockStatus
	}{
		{
			name:     "grouped quantity in stock",
			text:     "1,234 in stock",
			expected: models.StockStatus{InStock: true, Quantity: 1234, StatusText: "1234 In Stock"},
		},
		{
			name:     "explicit zero marker",
			text:     "0 in stock",
			expected: models.StockStatus{StatusText: "Out of Stock (0)"},
		},
		{
			name:     "zero marker with dash",
			text:     "<span>0 - In Stock</span>",
			expected: models.StockStatus{StatusText: "Out of Stock (0)"},
		},
		{
			name:     "zero marker wins over a later quantity",
			text:     "Factory: 0 in stock. Warehouse: 5,000 in stock",
			expected: models.StockStatus{StatusText: "Out of Stock (0)"},
		},
		{
			name:     "substring zero marker is still a zero marker",
			text:     "10 in stock",
			expected: models.StockStatus{StatusText: "Out of Stock (0)"},
		},
		{
			name:     "out of stock text",
			text:     "This part is Out of Stock. 25 in stock soon",
			expected: models.StockStatus{StatusText: "Out of Stock"},
		},
		{
			name:     "not available text",
			text:     "Not available for purchase",
			expected: models.StockStatus{StatusText: "Out of Stock"},
		},
		{
			name:     "dash separated quantity",
			text:     "<div>3,456 - In Stock</div>",
			expected: models.StockStatus{InStock: true, Quantity: 3456, StatusText: "3456 In Stock"},
		},
		{
			name:     "in stock without a number",
			text:     "Ships from stock. In Stock items ship today",
			expected: models.StockStatus{StatusText: "Out of Stock"},
		},
		{
			name:     "quantity taken from available phrase",
			text:     "In Stock: yes. 750 available",
			expected: models.StockStatus{InStock: true, Quantity: 750, StatusText: "750 In Stock"},
		},
		{
			name:     "nothing recognised",
			text:     "<html><body>Lead time 12 weeks</body></html>",
			expected: models.StockStatus{StatusText: "Out of Stock"},
		},
		{
			name:     "empty page",
			text:     "",
			expected: models.StockStatus{StatusText: "Out of Stock"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStock(tt.text))
		})
	}
}

func TestClassifyStockNeverNegative(t *testing.T) {
	inputs := []string{"", "in stock", "0 in stock", "99 available in stock", "out of stock"}
	for _, in := range inputs {
		status := ClassifyStock(in)
		assert.GreaterOrEqual(t, status.Quantity, 0, in)
		if !status.InStock {
			assert.Zero(t, status.Quantity, in)
		}
	}
}

func TestUnknownStock(t *testing.T) {
	assert.Equal(t, models.StockStatus{StatusText: "Unknown"}, UnknownStock())
}
