package scraper

import (
	"context"
	"fmt"

	"github.com/hotelwatch/rate-scraper/internal/models"
)

// Per-site scraping flows (selectors, navigation) land one OTA at a time.
// Until a site's flow exists its adapter registers as a placeholder, so a
// batch run can tell "this OTA is unsupported" apart from "this OTA failed".
type placeholder struct {
	ota string
}

func (p *placeholder) OTA() string { return p.ota }

func (p *placeholder) ScrapeRates(_ context.Context, query models.RateQuery) (*models.RateRecord, error) {
	// Query validation is the shared first step of every adapter, stub or
	// not, so callers see InvalidQuery before NotImplemented.
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotImplemented, p.ota)
}

// NewBookingScraper returns the Booking.com adapter.
func NewBookingScraper() Scraper { return &placeholder{ota: "booking"} }

// NewExpediaScraper returns the Expedia adapter.
func NewExpediaScraper() Scraper { return &placeholder{ota: "expedia"} }

// NewAgodaScraper returns the Agoda adapter.
func NewAgodaScraper() Scraper { return &placeholder{ota: "agoda"} }

// NewTripScraper returns the Trip.com adapter.
func NewTripScraper() Scraper { return &placeholder{ota: "trip"} }

// knownOTAs are the sites this service knows how to (eventually) scrape.
// The whitelist decides which of them a deployment actually registers.
var knownOTAs = []string{"booking", "expedia", "agoda", "trip"}

// DefaultRegistry registers an adapter for every known, whitelisted OTA.
// An OTA with a flow in env.Flows gets the full SiteScraper orchestration
// wired to the environment's sessions, limiter and normalizer; the rest
// register as placeholders.
func DefaultRegistry(env Environment, contains func(string) bool) (*Registry, error) {
	registry := NewRegistry()
	for _, ota := range knownOTAs {
		if !contains(ota) {
			continue
		}

		var s Scraper
		if flow, ok := env.Flows[ota]; ok {
			s = env.NewScraper(ota, flow)
		} else {
			s = &placeholder{ota: ota}
		}

		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
