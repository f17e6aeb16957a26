package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/maltedev/leadtime-scraper/internal/models"
)

const (
	StatusOutOfStock     = "Out of Stock"
	StatusOutOfStockZero = "Out of Stock (0)"
	StatusUnknown        = "Unknown"
)

var stockQuantityPattern = regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*(?:-\s*)?(?:in stock|available)`)

// ClassifyStock reads page text and decides whether the part is in stock.
// The checks run in a fixed order and the first match wins:
//  1. an explicit "0 in stock" / "0 - in stock" marker
//  2. "out of stock" or "not available"
//  3. "in stock" with the quantity taken from the first "<n> in stock" / "<n> available" match
//  4. anything else is out of stock
//
// The zero marker is a plain substring check, so "10 in stock" also hits rule 1.
func ClassifyStock(pageText string) models.StockStatus {
	text := strings.ToLower(pageText)

	switch {
	case strings.Contains(text, "0 in stock") || strings.Contains(text, "0 - in stock"):
		return models.StockStatus{StatusText: StatusOutOfStockZero}

	case strings.Contains(text, "out of stock") || strings.Contains(text, "not available"):
		return models.StockStatus{StatusText: StatusOutOfStock}

	case strings.Contains(text, "in stock"):
		qty, ok := parseStockQuantity(text)
		if !ok {
			return models.StockStatus{StatusText: StatusOutOfStock}
		}
		if qty == 0 {
			return models.StockStatus{StatusText: StatusOutOfStockZero}
		}
		return models.StockStatus{
			InStock:    true,
			Quantity:   qty,
			StatusText: fmt.Sprintf("%d In Stock", qty),
		}
	}

	return models.StockStatus{StatusText: StatusOutOfStock}
}

// UnknownStock is reported when the page could not be read at all.
func UnknownStock() models.StockStatus {
	return models.StockStatus{StatusText: StatusUnknown}
}

func parseStockQuantity(text string) (int, bool) {
	matches := stockQuantityPattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return 0, false
	}

	qty, err := strconv.Atoi(strings.ReplaceAll(matches[1], ",", ""))
	if err != nil {
		return 0, false
	}

	return qty, true
}
