package parser

import (
	"github.com/maltedev/leadtime-scraper/internal/models"
)

// Parser turns raw page content into structured stock and lead-time data.
type Parser interface {
	ClassifyStock(pageText string) models.StockStatus
	ExtractLeadTimes(html string) ([]models.LeadTimeEntry, error)
}

// StorefrontParser implements Parser with the package level heuristics.
type StorefrontParser struct{}

func NewStorefrontParser() *StorefrontParser {
	return &StorefrontParser{}
}

func (p *StorefrontParser) ClassifyStock(pageText string) models.StockStatus {
	return ClassifyStock(pageText)
}

func (p *StorefrontParser) ExtractLeadTimes(html string) ([]models.LeadTimeEntry, error) {
	return ExtractLeadTimes(html)
}
