package scraper

import (
	"context"
	"encoding/json"

	"github.com/hotelwatch/rate-scraper/internal/browser"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/parser"
)

// PageFlowConfig is the per-site configuration of a PageFlow: how to build
// the search URL, what marks a rendered results page, and where the rate
// cards keep their fields.
type PageFlowConfig struct {
	SearchURL func(query models.RateQuery) string
	Marker    browser.Locator
	Selectors parser.SelectorSet
}

// NewPageFlow builds the generic SiteFlow for sites whose results render
// into selectable rate cards. It snapshots the page HTML and runs the
// selector-driven extractor over it, so a new OTA flow reduces to a URL
// builder, a marker and a SelectorSet.
func NewPageFlow(cfg PageFlowConfig) SiteFlow {
	return &pageFlow{
		searchURL: cfg.SearchURL,
		marker:    cfg.Marker,
		extractor: parser.NewRateExtractor(cfg.Selectors),
	}
}

type pageFlow struct {
	searchURL func(query models.RateQuery) string
	marker    browser.Locator
	extractor *parser.RateExtractor
}

func (f *pageFlow) SearchURL(query models.RateQuery) string {
	return f.searchURL(query)
}

func (f *pageFlow) ResultsMarker() browser.Locator {
	return f.marker
}

func (f *pageFlow) ExtractRates(_ context.Context, session browser.Session) ([]models.RawRateEntry, json.RawMessage, error) {
	html, err := session.Content()
	if err != nil {
		return nil, nil, err
	}

	entries, err := f.extractor.ExtractRates(html)
	if err != nil {
		return nil, nil, err
	}

	// The raw entries double as the audit payload on the record.
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, nil, err
	}

	return entries, raw, nil
}
