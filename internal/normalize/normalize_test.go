package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/otas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWhitelist() *otas.Whitelist {
	return otas.New([]string{"booking", "expedia", "agoda", "trip"})
}

func testQuery() models.RateQuery {
	return models.RateQuery{
		HotelName: "Grand Hotel",
		CheckIn:   "2025-06-01",
		CheckOut:  "2025-06-03",
		Adults:    2,
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Dollar with thousands separator", "$1,234.56", 1234.56, true},
		{"Bare number", "1234.56", 1234.56, true},
		{"Whitespace padded", "  42 ", 42.0, true},
		{"Integer", "100", 100.0, true},
		{"Euro symbol", "€89.99", 89.99, true},
		{"Pound symbol", "£150", 150.0, true},
		{"Symbol with space", "$ 250", 250.0, true},
		{"Large with separators", "$12,345,678.90", 12345678.90, true},
		{"Empty", "", 0, false},
		{"Not available", "N/A", 0, false},
		{"Dashes", "--", 0, false},
		{"Symbol only", "$", 0, false},
		{"Trailing letters", "120 USD", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, amount)
			}
		})
	}
}

func TestNormalizeRejectsUnknownOTA(t *testing.T) {
	n := New(testWhitelist())

	for _, name := range []string{"", "hotels.com", "Booking", "BOOKING", " booking"} {
		t.Run("ota="+name, func(t *testing.T) {
			record, err := n.Normalize(name, testQuery(), nil, nil)
			assert.ErrorIs(t, err, ErrUnknownOTA)
			assert.Nil(t, record)
		})
	}
}

func TestNormalizeCopiesQueryVerbatim(t *testing.T) {
	n := New(testWhitelist())
	query := testQuery()

	record, err := n.Normalize("booking", query, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "booking", record.OTAName)
	assert.Equal(t, "Grand Hotel", record.HotelName)
	assert.Equal(t, "2025-06-01", record.CheckInDate)
	assert.Equal(t, "2025-06-03", record.CheckOutDate)
	assert.False(t, record.ScrapedAt.IsZero())
}

func TestNormalizeZeroEntriesIsSuccess(t *testing.T) {
	n := New(testWhitelist())

	record, err := n.Normalize("booking", testQuery(), nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, record.Rates)
	assert.Empty(t, record.Rates)
	assert.False(t, record.HasRates())
}

func TestNormalizePreservesOrderAndKeepsUnparseable(t *testing.T) {
	n := New(testWhitelist())
	entries := []models.RawRateEntry{
		{"price": "$100"},
		{"price": "bad"},
		{"price": "$50"},
	}

	record, err := n.Normalize("expedia", testQuery(), entries, nil)

	require.NoError(t, err)
	require.Len(t, record.Rates, 3)

	require.NotNil(t, record.Rates[0].Amount)
	assert.Equal(t, 100.0, *record.Rates[0].Amount)

	// The unparseable entry stays, with a nil amount.
	assert.Nil(t, record.Rates[1].Amount)

	require.NotNil(t, record.Rates[2].Amount)
	assert.Equal(t, 50.0, *record.Rates[2].Amount)
}

func TestNormalizeCarriesLabelAndCurrency(t *testing.T) {
	n := New(testWhitelist())
	entries := []models.RawRateEntry{
		{"price": "$199.00", "currency": "USD", "label": "Deluxe King"},
	}

	record, err := n.Normalize("agoda", testQuery(), entries, nil)

	require.NoError(t, err)
	require.Len(t, record.Rates, 1)
	assert.Equal(t, "USD", record.Rates[0].Currency)
	assert.Equal(t, "Deluxe King", record.Rates[0].RawLabel)
}

func TestNormalizeNumericPriceValues(t *testing.T) {
	n := New(testWhitelist())
	entries := []models.RawRateEntry{
		{"price": 120.5},
		{"price": 99},
	}

	record, err := n.Normalize("trip", testQuery(), entries, nil)

	require.NoError(t, err)
	require.Len(t, record.Rates, 2)
	assert.Equal(t, 120.5, *record.Rates[0].Amount)
	assert.Equal(t, 99.0, *record.Rates[1].Amount)
}

func TestNormalizeAttachesRawPayloadUntouched(t *testing.T) {
	n := New(testWhitelist())
	payload := json.RawMessage(`{"page":"<html>whatever</html>"}`)

	record, err := n.Normalize("booking", testQuery(), nil, payload)

	require.NoError(t, err)
	assert.Equal(t, payload, record.RawData)
}

func TestNormalizeDeterministicApartFromTimestamp(t *testing.T) {
	n := New(testWhitelist())
	entries := []models.RawRateEntry{
		{"price": "$310", "label": "Suite"},
		{"price": "n/a"},
	}

	first, err := n.Normalize("booking", testQuery(), entries, nil)
	require.NoError(t, err)
	second, err := n.Normalize("booking", testQuery(), entries, nil)
	require.NoError(t, err)

	first.ScrapedAt = time.Time{}
	second.ScrapedAt = time.Time{}
	assert.Equal(t, first, second)
}

func TestScrapedAtMonotonicAcrossClockStepBack(t *testing.T) {
	n := New(testWhitelist())

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Hour), base.Add(time.Minute)}
	i := 0
	n.now = func() time.Time {
		t := clock[i]
		i++
		return t
	}

	var stamps []time.Time
	for range clock {
		record, err := n.Normalize("booking", testQuery(), nil, nil)
		require.NoError(t, err)
		stamps = append(stamps, record.ScrapedAt)
	}

	assert.Equal(t, base, stamps[0])
	// The clock stepped back an hour; the stamp must not.
	assert.Equal(t, base, stamps[1])
	assert.Equal(t, base.Add(time.Minute), stamps[2])
}
