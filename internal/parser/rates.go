package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hotelwatch/rate-scraper/internal/models"
)

// SelectorSet describes where a site's results page keeps its rate offers.
// Each adapter owns one of these; the extraction machinery is shared.
type SelectorSet struct {
	// RateCard matches the container of one rate offer.
	RateCard string
	// Label matches the room/plan name inside a card.
	Label string
	// Price matches the price text inside a card.
	Price string
	// Currency optionally matches a dedicated currency element.
	Currency string
}

// RateExtractor pulls raw rate entries out of a results-page HTML snapshot.
type RateExtractor struct {
	selectors    SelectorSet
	pricePattern *regexp.Regexp
}

func NewRateExtractor(selectors SelectorSet) *RateExtractor {
	return &RateExtractor{
		selectors:    selectors,
		pricePattern: regexp.MustCompile(`[€$£¥₹]\s*\d[\d,]*(?:\.\d+)?`),
	}
}

// ExtractRates returns one raw entry per rate card, in document order. Cards
// whose price text is missing or garbled still produce an entry; deciding
// what an unparseable price means is the normalizer's job, not ours.
func (e *RateExtractor) ExtractRates(html string) ([]models.RawRateEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var entries []models.RawRateEntry

	doc.Find(e.selectors.RateCard).Each(func(_ int, card *goquery.Selection) {
		entry := models.RawRateEntry{}

		if e.selectors.Label != "" {
			if label := cleanText(card.Find(e.selectors.Label).First().Text()); label != "" {
				entry["label"] = label
			}
		}

		price := cleanText(card.Find(e.selectors.Price).First().Text())
		if price == "" {
			// Some sites inline the price into the card text without a
			// stable element; fall back to scanning for a currency-prefixed
			// number.
			price = e.pricePattern.FindString(card.Text())
		}
		entry["price"] = price

		currency := ""
		if e.selectors.Currency != "" {
			currency = cleanText(card.Find(e.selectors.Currency).First().Text())
		}
		if currency == "" {
			currency = detectCurrency(price)
		}
		if currency != "" {
			entry["currency"] = currency
		}

		entries = append(entries, entry)
	})

	return entries, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

func detectCurrency(price string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(price, symbol) {
			return code
		}
	}
	return ""
}
