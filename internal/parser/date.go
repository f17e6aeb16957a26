package parser

import (
	"strings"
	"time"
)

// CanonicalDateLayout is the output format of NormalizeDate (DD.MM.YYYY).
const CanonicalDateLayout = "02.01.2006"

// dateLayouts are tried in order; the first one that parses wins.
// Single-digit day and month fields accept both "3" and "03".
var dateLayouts = []string{
	"2.1.2006",        // DD.MM.YYYY
	"1/2/2006",        // MM/DD/YYYY
	"2/1/2006",        // DD/MM/YYYY
	"2006-1-2",        // YYYY-MM-DD
	"2-1-2006",        // DD-MM-YYYY
	"January 2, 2006", // Month DD, YYYY
	"2 January 2006",  // DD Month YYYY
}

// NormalizeDate parses a ship date in any accepted layout and re-emits it as
// DD.MM.YYYY. The second return value is false when no layout matches.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(CanonicalDateLayout), true
		}
	}

	return "", false
}
