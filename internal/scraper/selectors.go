package scraper

import (
	"fmt"

	"github.com/maltedev/leadtime-scraper/internal/browser"
)

var cookieStrategies = []browser.Strategy{
	browser.XPath("accept text", "//button[contains(text(), 'Accept')]"),
	browser.XPath("accept all text", "//button[contains(text(), 'Accept All')]"),
	browser.XPath("akzeptieren text", "//button[contains(text(), 'Akzeptieren')]"),
	browser.XPath("accept id", "//button[contains(@id, 'accept')]"),
	browser.XPath("cookie id", "//button[contains(@id, 'cookie')]"),
	browser.XPath("accept class", "//button[contains(@class, 'accept')]"),
	browser.XPath("accept link", "//a[contains(text(), 'Accept')]"),
	browser.XPath("onetrust", "//*[@id='onetrust-accept-btn-handler']"),
	browser.XPath("cookie-accept class", "//*[contains(@class, 'cookie-accept')]"),
	browser.XPath("i accept", "//button[contains(., 'I Accept')]"),
}

var leadTimeStrategies = []browser.Strategy{
	browser.XPath("check lead time text", "//*[contains(text(), 'Check Lead Time')]"),
	browser.XPath("lead time text", "//*[contains(text(), 'Lead Time')]"),
	browser.XPath("lead time button", "//button[contains(., 'Lead Time')]"),
	browser.XPath("check lead time link", "//a[contains(text(), 'Check Lead Time')]"),
	browser.XPath("lead-time class", "//a[contains(@class, 'lead-time')]"),
}

var quantityInputStrategies = []browser.Strategy{
	browser.XPath("test id", `//input[@data-testid="lt-input-qty"]`),
	browser.XPath("numeric inputmode", `//input[@inputmode="numeric"]`),
	browser.XPath("quantity id", `//input[@id="quantity-input"]`),
	browser.XPath("mui input", `//input[contains(@class, "MuiInputBase-input")]`),
}

var updateStrategies = []browser.Strategy{
	browser.XPath("update text", "//button[contains(text(), 'Update')]"),
	browser.XPath("update exact", "//button[text()='Update']"),
	browser.XPath("update typed button", "//button[@type='button' and contains(., 'Update')]"),
}

// productLinkStrategies lists the ways of finding a detail link on a search
// results page, most specific first.
func productLinkStrategies(partNumber, detailPath string) []browser.Strategy {
	part := browser.XPathLiteral(partNumber)
	detail := browser.XPathLiteral(detailPath)

	return []browser.Strategy{
		browser.XPath("link text and href",
			fmt.Sprintf("//a[contains(@href, %s) and contains(., %s)]", detail, part)),
		browser.XPath("table row ancestor",
			fmt.Sprintf("//td[contains(., %s)]//ancestor::tr//a[contains(@href, %s)]", part, detail)),
		browser.XPath("product table",
			fmt.Sprintf("//table[@id='productTable']//a[contains(@href, %s)]", detail)),
		browser.XPath("first column",
			fmt.Sprintf("//table//tr//td[1]//a[contains(@href, %s)]", detail)),
	}
}
