package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/database"
	"github.com/hotelwatch/rate-scraper/internal/events"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/scraper"
)

// OTAResult is the outcome of one OTA's scrape within a job: exactly one of
// Record or Err is set, so a job always yields one unambiguous result per
// OTA.
type OTAResult struct {
	OTA    string
	Record *models.RateRecord
	Err    error
}

// JobStore is the job persistence the manager needs;
// *database.JobRepository implements it.
type JobStore interface {
	Insert(ctx context.Context, job *database.ScrapeJob) error
	Get(ctx context.Context, id string) (*database.ScrapeJob, error)
	ClaimNext(ctx context.Context) (*database.ScrapeJob, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
}

// RateStore persists canonical records; *database.RateRepository
// implements it.
type RateStore interface {
	Save(ctx context.Context, record *models.RateRecord) error
}

// EventPublisher emits one event per OTA result; *events.Publisher
// implements it. Nil disables publishing.
type EventPublisher interface {
	PublishRatesScraped(ctx context.Context, payload *events.RatesScrapedPayload) error
}

// Manager queues scrape jobs and runs them across every registered OTA.
type Manager struct {
	jobs         JobStore
	rates        RateStore
	registry     *scraper.Registry
	publisher    EventPublisher
	logger       *slog.Logger
	pollInterval time.Duration
}

func NewManager(jobs JobStore, rates RateStore, registry *scraper.Registry, publisher EventPublisher, logger *slog.Logger) *Manager {
	return &Manager{
		jobs:         jobs,
		rates:        rates,
		registry:     registry,
		publisher:    publisher,
		logger:       logger.With("component", "jobs"),
		pollInterval: 10 * time.Second,
	}
}

// Enqueue validates the query and stores a pending job. Validation happens
// here so a bad query is rejected before anything is queued or any session
// is opened.
func (m *Manager) Enqueue(ctx context.Context, query models.RateQuery) (*database.ScrapeJob, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrInvalidQuery, err)
	}

	job := &database.ScrapeJob{Query: query}
	if err := m.jobs.Insert(ctx, job); err != nil {
		return nil, err
	}

	m.logger.Info("job queued", "id", job.ID, "hotel", query.HotelName)
	return job, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*database.ScrapeJob, error) {
	return m.jobs.Get(ctx, id)
}

// ScrapeAll runs the query against every registered OTA concurrently. Each
// adapter paces itself with its own limiter and owns its own session, so the
// fan-out needs no shared throttling state. Results come back in registry
// order, one per OTA.
func (m *Manager) ScrapeAll(ctx context.Context, query models.RateQuery) []OTAResult {
	names := m.registry.OTAs()
	results := make([]OTAResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		s, _ := m.registry.Get(name)

		wg.Add(1)
		go func(i int, s scraper.Scraper) {
			defer wg.Done()

			record, err := s.ScrapeRates(ctx, query)
			results[i] = OTAResult{OTA: s.OTA(), Record: record, Err: err}
		}(i, s)
	}
	wg.Wait()

	return results
}

// RunJob executes a claimed job: scrape all OTAs, persist successful
// records, publish one event per OTA result, and settle the job status.
func (m *Manager) RunJob(ctx context.Context, job *database.ScrapeJob) error {
	m.logger.Info("running job", "id", job.ID, "hotel", job.Query.HotelName)

	results := m.ScrapeAll(ctx, job.Query)

	var failures []string
	successes := 0

	for _, result := range results {
		if result.Err == nil {
			if err := m.rates.Save(ctx, result.Record); err != nil {
				m.logger.Error("failed to persist record", "job", job.ID, "ota", result.OTA, "error", err)
				failures = append(failures, fmt.Sprintf("%s: %v", result.OTA, err))
				// An unpersisted record must not go out as a success;
				// consumers would see data the store never accepted.
				result.Record = nil
				result.Err = fmt.Errorf("failed to persist record: %w", err)
			} else {
				successes++
			}
			m.publish(ctx, job, result)
			continue
		}

		if errors.Is(result.Err, scraper.ErrNotImplemented) {
			// Unsupported, not failed; report it but keep it out of the
			// failure tally.
			m.logger.Info("skipping unsupported OTA", "job", job.ID, "ota", result.OTA)
		} else {
			m.logger.Error("OTA scrape failed", "job", job.ID, "ota", result.OTA, "error", result.Err)
			failures = append(failures, fmt.Sprintf("%s: %v", result.OTA, result.Err))
		}
		m.publish(ctx, job, result)
	}

	status := database.JobStatusCompleted
	if successes == 0 && len(failures) > 0 {
		status = database.JobStatusFailed
	}

	return m.jobs.UpdateStatus(ctx, job.ID, status, strings.Join(failures, "; "))
}

func (m *Manager) publish(ctx context.Context, job *database.ScrapeJob, result OTAResult) {
	if m.publisher == nil {
		return
	}

	payload := &events.RatesScrapedPayload{
		JobID:     job.ID,
		OTAName:   result.OTA,
		HotelName: job.Query.HotelName,
		Record:    result.Record,
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
	}

	if err := m.publisher.PublishRatesScraped(ctx, payload); err != nil {
		m.logger.Error("failed to publish event", "job", job.ID, "ota", result.OTA, "error", err)
	}
}
