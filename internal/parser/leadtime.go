package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/leadtime-scraper/internal/models"
)

var nonDigitPattern = regexp.MustCompile(`[^\d]`)

// ExtractLeadTimes walks every table in document order and returns the
// entries of the first table that yields at least one usable row. Later
// tables are not examined.
func ExtractLeadTimes(html string) ([]models.LeadTimeEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	entries := make([]models.LeadTimeEntry, 0)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		entries = extractTable(table)
		return len(entries) == 0
	})

	return entries, nil
}

// extractTable reads (quantity, date) pairs from every row after the header.
func extractTable(table *goquery.Selection) []models.LeadTimeEntry {
	entries := make([]models.LeadTimeEntry, 0)

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return entries
	}

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		if entry, ok := ParseLeadTimeRow(cells.Eq(0).Text(), cells.Eq(1).Text()); ok {
			entries = append(entries, entry)
		}
	})

	return entries
}

// ParseLeadTimeRow converts one quantity/date cell pair. Rows with no digits in
// the quantity, a zero quantity or an unparseable date are rejected.
func ParseLeadTimeRow(qtyText, dateText string) (models.LeadTimeEntry, bool) {
	qtyText = strings.TrimSpace(qtyText)
	dateText = strings.TrimSpace(dateText)

	digits := nonDigitPattern.ReplaceAllString(qtyText, "")
	if digits == "" {
		return models.LeadTimeEntry{}, false
	}

	qty, err := strconv.Atoi(digits)
	if err != nil || qty <= 0 {
		return models.LeadTimeEntry{}, false
	}

	shipDate, ok := NormalizeDate(dateText)
	if !ok {
		return models.LeadTimeEntry{}, false
	}

	return models.LeadTimeEntry{
		Qty:      qty,
		ShipDate: shipDate,
		RawText:  fmt.Sprintf("QTY: %d, Date: %s", qty, dateText),
	}, true
}
