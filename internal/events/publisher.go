package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	// EventTypeRatesScraped is published once per OTA result in a job,
	// whether the scrape succeeded or failed.
	EventTypeRatesScraped EventType = "RATES_SCRAPED"
)

// RatesScrapedPayload is the event body consumers read off the stream.
// One payload per OTA per job: either Record is set or Error names the
// failure kind, never both.
type RatesScrapedPayload struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
	JobID     string             `json:"job_id,omitempty"`
	OTAName   string             `json:"ota_name"`
	HotelName string             `json:"hotel_name"`
	Record    *models.RateRecord `json:"record,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Publisher writes scrape events to a Redis stream.
type Publisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) PublishRatesScraped(ctx context.Context, payload *RatesScrapedPayload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypeRatesScraped)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": payload.EventType,
			"payload":    string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("published event",
		"event_id", payload.EventID,
		"ota", payload.OTAName,
		"hotel", payload.HotelName)
	return nil
}
