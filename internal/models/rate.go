package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

// DefaultAdults is used when a query does not specify an occupancy.
const DefaultAdults = 2

// RateQuery is the input to every scrape operation.
type RateQuery struct {
	HotelName string `json:"hotel_name"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Adults    int    `json:"adults"`
}

// NewRateQuery builds a query with the default occupancy.
func NewRateQuery(hotelName, checkIn, checkOut string) RateQuery {
	return RateQuery{
		HotelName: hotelName,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Adults:    DefaultAdults,
	}
}

// Validate checks the query against the invariants every adapter relies on:
// non-empty hotel name, parseable dates with check-in strictly before
// check-out, and at least one adult.
func (q RateQuery) Validate() error {
	if strings.TrimSpace(q.HotelName) == "" {
		return fmt.Errorf("hotel name is required")
	}

	checkIn, err := time.Parse(DateLayout, q.CheckIn)
	if err != nil {
		return fmt.Errorf("invalid check-in date %q: %w", q.CheckIn, err)
	}

	checkOut, err := time.Parse(DateLayout, q.CheckOut)
	if err != nil {
		return fmt.Errorf("invalid check-out date %q: %w", q.CheckOut, err)
	}

	if !checkIn.Before(checkOut) {
		return fmt.Errorf("check-in %s must be before check-out %s", q.CheckIn, q.CheckOut)
	}

	if q.Adults < 1 {
		return fmt.Errorf("adults must be at least 1, got %d", q.Adults)
	}

	return nil
}

// Nights returns the stay length. Valid only after Validate has passed.
func (q RateQuery) Nights() int {
	checkIn, _ := time.Parse(DateLayout, q.CheckIn)
	checkOut, _ := time.Parse(DateLayout, q.CheckOut)
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// RawRateEntry is the adapter-produced, pre-normalization shape of one rate.
// The core imposes nothing on it beyond serializability; well-known keys
// ("price", "currency", "label") are read by the normalizer when present.
type RawRateEntry map[string]any

// Rate is one normalized rate line. Amount is nil when the source price
// string could not be parsed; the entry is still kept so that "a rate
// existed but was unparseable" stays distinguishable from "no rate".
type Rate struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency,omitempty"`
	RawLabel string   `json:"raw_label,omitempty"`
}

// RateRecord is the canonical cross-site record every adapter returns.
// It is a value type: immutable once built, holding no reference back to
// the session or adapter that produced it.
type RateRecord struct {
	ID           string          `json:"id,omitempty"`
	OTAName      string          `json:"ota_name"`
	HotelName    string          `json:"hotel_name"`
	CheckInDate  string          `json:"check_in_date"`
	CheckOutDate string          `json:"check_out_date"`
	ScrapedAt    time.Time       `json:"scraped_at"`
	Rates        []Rate          `json:"rates"`
	RawData      json.RawMessage `json:"raw_data,omitempty"`
}

// HasRates reports whether any rate line carries a parsed amount.
func (r *RateRecord) HasRates() bool {
	for _, rate := range r.Rates {
		if rate.Amount != nil {
			return true
		}
	}
	return false
}
