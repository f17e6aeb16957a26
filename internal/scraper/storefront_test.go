package scraper

import (
	"testing"

	"github.com/maltedev/leadtime-scraper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://www.digikey.de/en/products/result?keywords=AD5412AREZ",
		BuildSearchURL("https://www.digikey.de/en/products/result?keywords={part}", "AD5412AREZ"),
	)
}

func TestMatchesPart(t *testing.T) {
	tests := []struct {
		name string
		text string
		href string
		want bool
	}{
		{"text", "AD5412AREZ-REEL", "/x", true},
		{"href lower case", "Datasheet", "/en/products/detail/analog/ad5412arez/123", true},
		{"neither", "ADXL355BEZ", "/en/products/detail/analog/adxl355bez/1", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPart(tt.text, tt.href, "AD5412AREZ"))
		})
	}
}

func TestIsDetailURL(t *testing.T) {
	assert.True(t, isDetailURL("https://www.digikey.de/en/products/detail/analog/AD5412AREZ/2069433", "/products/detail/"))
	assert.False(t, isDetailURL("https://www.digikey.de/en/products/result?keywords=AD5412AREZ", "/products/detail/"))
}

func TestIsNotFoundPage(t *testing.T) {
	assert.True(t, isNotFoundPage("404 | DigiKey", ""))
	assert.True(t, isNotFoundPage("DigiKey", "<p>Page Not Found</p>"))
	assert.False(t, isNotFoundPage("AD5412AREZ | DigiKey", "<p>1 results</p>"))
}

func TestQuantityMatches(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"9999999", true},
		{"9,999,999", true},
		{"9.999.999", true},
		{" 9 999 999 ", true},
		{"99999990", true},
		{"999999", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, quantityMatches(tt.value, "9999999"))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("  abc ", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}

func TestDetailURLCacheOffByDefault(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	f, err := NewStorefront(nil, cfg.Scraper, nil, discardLogger())
	require.NoError(t, err)

	f.rememberDetailURL("AD5412AREZ", "https://www.digikey.de/en/products/detail/analog/AD5412AREZ/1")
	_, ok := f.cachedDetailURL("AD5412AREZ")
	assert.False(t, ok, "search must go through the search URL template")
}

func TestDetailURLCacheEnabled(t *testing.T) {
	f, err := NewStorefront(nil, config.ScraperConfig{URLCacheSize: 1}, nil, discardLogger())
	require.NoError(t, err)

	f.rememberDetailURL("A", "/products/detail/a")
	f.rememberDetailURL("B", "/products/detail/b")

	_, ok := f.cachedDetailURL("A")
	assert.False(t, ok, "evicted")

	url, ok := f.cachedDetailURL("B")
	assert.True(t, ok)
	assert.Equal(t, "/products/detail/b", url)
}
