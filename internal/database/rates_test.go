package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("Test database not configured")
	}

	db, err := New(context.Background(), Config{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     5432,
		User:     "postgres",
		Password: os.Getenv("TEST_DB_PASSWORD"),
		Database: "hotel_rates_test",
		MaxConns: 2,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestRateRepositorySaveAndList(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRateRepository(db)

	amount := 189.0
	record := &models.RateRecord{
		OTAName:      "booking",
		HotelName:    "Grand Hotel",
		CheckInDate:  "2025-06-01",
		CheckOutDate: "2025-06-03",
		ScrapedAt:    time.Now().UTC(),
		Rates: []models.Rate{
			{Amount: &amount, Currency: "USD", RawLabel: "Deluxe King"},
			{Amount: nil, RawLabel: "Unpriced suite"},
		},
	}

	require.NoError(t, repo.Save(ctx, record))
	assert.NotEmpty(t, record.ID)

	records, err := repo.ListByHotel(ctx, "Grand Hotel", 10)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	got := records[0]
	assert.Equal(t, "booking", got.OTAName)
	assert.Equal(t, "2025-06-01", got.CheckInDate)
	require.Len(t, got.Rates, 2)
	assert.Equal(t, 189.0, *got.Rates[0].Amount)
	assert.Nil(t, got.Rates[1].Amount)
}

func TestJobRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewJobRepository(db)

	job := &ScrapeJob{
		Query: models.RateQuery{
			HotelName: "Grand Hotel",
			CheckIn:   "2025-06-01",
			CheckOut:  "2025-06-03",
			Adults:    2,
		},
	}
	require.NoError(t, repo.Insert(ctx, job))
	assert.Equal(t, JobStatusPending, job.Status)

	claimed, err := repo.ClaimNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, JobStatusRunning, claimed.Status)

	require.NoError(t, repo.UpdateStatus(ctx, claimed.ID, JobStatusCompleted, ""))

	got, err := repo.Get(ctx, claimed.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, JobStatusCompleted, got.Status)
}

func TestJobRepositoryGetMissing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewJobRepository(db)

	job, err := repo.Get(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, job)
}
