package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewBookingScraper()))

	s, ok := registry.Get("booking")
	require.True(t, ok)
	assert.Equal(t, "booking", s.OTA())

	_, ok = registry.Get("expedia")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewBookingScraper()))

	err := registry.Register(NewBookingScraper())
	assert.Error(t, err)
}

func TestRegistryOTAsSorted(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewTripScraper()))
	require.NoError(t, registry.Register(NewAgodaScraper()))
	require.NoError(t, registry.Register(NewBookingScraper()))

	assert.Equal(t, []string{"agoda", "booking", "trip"}, registry.OTAs())
}

func TestDefaultRegistryFiltersByWhitelist(t *testing.T) {
	allowed := map[string]bool{"booking": true, "trip": true}

	registry, err := DefaultRegistry(Environment{}, func(name string) bool {
		return allowed[name]
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"booking", "trip"}, registry.OTAs())
}

func TestPlaceholderSignalsNotImplemented(t *testing.T) {
	for _, s := range []Scraper{
		NewBookingScraper(),
		NewExpediaScraper(),
		NewAgodaScraper(),
		NewTripScraper(),
	} {
		t.Run(s.OTA(), func(t *testing.T) {
			record, err := s.ScrapeRates(context.Background(), validQuery())

			assert.Nil(t, record)
			// Unsupported must stay distinguishable from every failure kind.
			assert.ErrorIs(t, err, ErrNotImplemented)
			assert.NotErrorIs(t, err, ErrInvalidQuery)
			assert.NotErrorIs(t, err, ErrSiteLayoutChanged)
		})
	}
}

func TestPlaceholderValidatesBeforeNotImplemented(t *testing.T) {
	s := NewBookingScraper()

	query := validQuery()
	query.HotelName = ""

	_, err := s.ScrapeRates(context.Background(), query)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.NotErrorIs(t, err, ErrNotImplemented)
}
