package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/otas"
)

// ErrUnknownOTA means an adapter handed the normalizer a site identifier that
// is not on the whitelist. That is a configuration defect, not a scrape
// failure, so it surfaces instead of being retried.
var ErrUnknownOTA = errors.New("unknown OTA")

// Normalizer converts adapter output into canonical rate records. It carries
// the whitelist it enforces plus a clamp that keeps ScrapedAt non-decreasing
// across calls on the same instance even if the wall clock steps backwards.
type Normalizer struct {
	whitelist *otas.Whitelist
	now       func() time.Time

	mu        sync.Mutex
	lastStamp time.Time
}

func New(whitelist *otas.Whitelist) *Normalizer {
	return &Normalizer{
		whitelist: whitelist,
		now:       time.Now,
	}
}

// Normalize builds the canonical record for one scrape. Hotel name and dates
// are copied verbatim from the query; raw entries keep their extraction
// order, with unparseable prices recorded as nil amounts rather than dropped;
// rawPayload is attached untouched for audit.
func (n *Normalizer) Normalize(otaName string, query models.RateQuery, entries []models.RawRateEntry, rawPayload json.RawMessage) (*models.RateRecord, error) {
	if !n.whitelist.Contains(otaName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOTA, otaName)
	}

	record := &models.RateRecord{
		OTAName:      otaName,
		HotelName:    query.HotelName,
		CheckInDate:  query.CheckIn,
		CheckOutDate: query.CheckOut,
		ScrapedAt:    n.stamp(),
		Rates:        make([]models.Rate, 0, len(entries)),
		RawData:      rawPayload,
	}

	for _, entry := range entries {
		record.Rates = append(record.Rates, normalizeEntry(entry))
	}

	return record, nil
}

func (n *Normalizer) stamp() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	stamp := n.now().UTC()
	if stamp.Before(n.lastStamp) {
		stamp = n.lastStamp
	}
	n.lastStamp = stamp
	return stamp
}

func normalizeEntry(entry models.RawRateEntry) models.Rate {
	var rate models.Rate

	if label, ok := entry["label"].(string); ok {
		rate.RawLabel = label
	}
	if currency, ok := entry["currency"].(string); ok {
		rate.Currency = currency
	}

	switch price := entry["price"].(type) {
	case string:
		if amount, ok := ParsePrice(price); ok {
			rate.Amount = &amount
		}
	case float64:
		amount := price
		rate.Amount = &amount
	case int:
		amount := float64(price)
		rate.Amount = &amount
	}

	return rate
}

var symbolStripper = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	"₹", "",
	",", "",
)

// ParsePrice parses a scraped price string: currency symbols and comma
// thousands separators are stripped, surrounding whitespace is ignored.
// Anything that is empty or still non-numeric after stripping is rejected.
func ParsePrice(s string) (float64, bool) {
	cleaned := strings.TrimSpace(symbolStripper.Replace(s))
	if cleaned == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
