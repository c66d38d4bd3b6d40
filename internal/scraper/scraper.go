package scraper

import (
	"context"
	"errors"

	"github.com/hotelwatch/rate-scraper/internal/models"
)

var (
	// ErrInvalidQuery is a caller error: bad date ordering, empty hotel name
	// or non-positive adult count. Never retried.
	ErrInvalidQuery = errors.New("invalid rate query")
	// ErrSiteLayoutChanged means the page structure an adapter expects was
	// absent after its wait budget ran out. Distinct from zero rates found,
	// which is an ordinary empty result.
	ErrSiteLayoutChanged = errors.New("site layout changed")
	// ErrScrapeDeadline means the adapter exceeded its overall operation
	// budget, as opposed to a single element wait timing out.
	ErrScrapeDeadline = errors.New("scrape deadline exceeded")
	// ErrNotImplemented marks an OTA that is registered but has no working
	// adapter yet, so batch runs can skip it instead of counting a failure.
	ErrNotImplemented = errors.New("OTA adapter not implemented")
)

// Scraper is the capability every OTA adapter provides. An adapter owns its
// own rate limiter and browser session; one result comes back per call,
// whether that is a record (possibly with zero rates) or a taxonomy error.
type Scraper interface {
	OTA() string
	ScrapeRates(ctx context.Context, query models.RateQuery) (*models.RateRecord, error)
}
