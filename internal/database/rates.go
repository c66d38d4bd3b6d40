package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hotelwatch/rate-scraper/internal/models"
)

// RateRepository persists canonical rate records.
type RateRepository struct {
	db *DB
}

func NewRateRepository(db *DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) Save(ctx context.Context, record *models.RateRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	rates, err := json.Marshal(record.Rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	var rawData any
	if len(record.RawData) > 0 {
		rawData = []byte(record.RawData)
	}

	query := `
		INSERT INTO rate_records (id, ota_name, hotel_name, check_in_date, check_out_date, scraped_at, rates, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.OTAName,
		record.HotelName,
		record.CheckInDate,
		record.CheckOutDate,
		record.ScrapedAt,
		rates,
		rawData,
	)
	if err != nil {
		return fmt.Errorf("failed to save rate record: %w", err)
	}

	return nil
}

// ListByHotel returns the most recent records for a hotel, newest first.
func (r *RateRepository) ListByHotel(ctx context.Context, hotelName string, limit int) ([]models.RateRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, ota_name, hotel_name, to_char(check_in_date, 'YYYY-MM-DD'), to_char(check_out_date, 'YYYY-MM-DD'), scraped_at, rates, raw_data
		FROM rate_records
		WHERE hotel_name = $1
		ORDER BY scraped_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, hotelName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate records: %w", err)
	}
	defer rows.Close()

	var records []models.RateRecord
	for rows.Next() {
		var record models.RateRecord
		var rates []byte
		var rawData []byte

		if err := rows.Scan(
			&record.ID,
			&record.OTAName,
			&record.HotelName,
			&record.CheckInDate,
			&record.CheckOutDate,
			&record.ScrapedAt,
			&rates,
			&rawData,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rate record: %w", err)
		}

		if err := json.Unmarshal(rates, &record.Rates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rates: %w", err)
		}
		record.RawData = rawData

		records = append(records, record)
	}

	return records, rows.Err()
}
