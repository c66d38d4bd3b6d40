package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   RateQuery
		wantErr bool
	}{
		{
			name:  "valid query",
			query: RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-01", CheckOut: "2025-06-03", Adults: 2},
		},
		{
			name:  "single night single adult",
			query: RateQuery{HotelName: "Inn", CheckIn: "2025-01-01", CheckOut: "2025-01-02", Adults: 1},
		},
		{
			name:    "empty hotel name",
			query:   RateQuery{HotelName: "", CheckIn: "2025-06-01", CheckOut: "2025-06-03", Adults: 2},
			wantErr: true,
		},
		{
			name:    "whitespace hotel name",
			query:   RateQuery{HotelName: "   ", CheckIn: "2025-06-01", CheckOut: "2025-06-03", Adults: 2},
			wantErr: true,
		},
		{
			name:    "check-in after check-out",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-05", CheckOut: "2025-06-01", Adults: 2},
			wantErr: true,
		},
		{
			name:    "check-in equals check-out",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-01", CheckOut: "2025-06-01", Adults: 2},
			wantErr: true,
		},
		{
			name:    "malformed check-in",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "06/01/2025", CheckOut: "2025-06-03", Adults: 2},
			wantErr: true,
		},
		{
			name:    "malformed check-out",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-01", CheckOut: "not-a-date", Adults: 2},
			wantErr: true,
		},
		{
			name:    "zero adults",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-01", CheckOut: "2025-06-03", Adults: 0},
			wantErr: true,
		},
		{
			name:    "negative adults",
			query:   RateQuery{HotelName: "Grand Hotel", CheckIn: "2025-06-01", CheckOut: "2025-06-03", Adults: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRateQueryDefaultsAdults(t *testing.T) {
	query := NewRateQuery("Grand Hotel", "2025-06-01", "2025-06-03")

	assert.Equal(t, DefaultAdults, query.Adults)
	require.NoError(t, query.Validate())
}

func TestNights(t *testing.T) {
	query := NewRateQuery("Grand Hotel", "2025-06-01", "2025-06-04")
	require.NoError(t, query.Validate())

	assert.Equal(t, 3, query.Nights())
}

func TestHasRates(t *testing.T) {
	amount := 120.0

	withRate := &RateRecord{Rates: []Rate{{Amount: &amount}}}
	assert.True(t, withRate.HasRates())

	onlyUnparsed := &RateRecord{Rates: []Rate{{Amount: nil, RawLabel: "Suite"}}}
	assert.False(t, onlyUnparsed.HasRates())

	empty := &RateRecord{}
	assert.False(t, empty.HasRates())
}
