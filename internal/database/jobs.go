package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ScrapeJob is one queued request to scrape a hotel across all whitelisted
// OTAs.
type ScrapeJob struct {
	ID        string           `json:"id"`
	Query     models.RateQuery `json:"query"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Insert(ctx context.Context, job *ScrapeJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = JobStatusPending
	}

	query := `
		INSERT INTO scrape_jobs (id, hotel_name, check_in_date, check_out_date, adults, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.Query.HotelName,
		job.Query.CheckIn,
		job.Query.CheckOut,
		job.Query.Adults,
		job.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scrape job: %w", err)
	}

	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*ScrapeJob, error) {
	query := `
		SELECT id, hotel_name, check_in_date, check_out_date, adults, status, COALESCE(error, ''), created_at, updated_at
		FROM scrape_jobs
		WHERE id = $1
	`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scrape job: %w", err)
	}
	return job, nil
}

// ClaimNext picks the oldest pending job and marks it running. Returns nil
// when there is nothing to do. SKIP LOCKED keeps concurrent workers from
// claiming the same row.
func (r *JobRepository) ClaimNext(ctx context.Context) (*ScrapeJob, error) {
	var job *ScrapeJob

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			SELECT id, hotel_name, check_in_date, check_out_date, adults, status, COALESCE(error, ''), created_at, updated_at
			FROM scrape_jobs
			WHERE status = $1
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`

		claimed, err := scanJob(tx.QueryRow(ctx, query, JobStatusPending))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE scrape_jobs SET status = $1, updated_at = now() WHERE id = $2`,
			JobStatusRunning, claimed.ID)
		if err != nil {
			return err
		}

		claimed.Status = JobStatusRunning
		job = claimed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim scrape job: %w", err)
	}

	return job, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE scrape_jobs SET status = $1, error = NULLIF($2, ''), updated_at = now() WHERE id = $3`,
		status, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update scrape job %s: %w", id, err)
	}
	return nil
}

func scanJob(row pgx.Row) (*ScrapeJob, error) {
	var job ScrapeJob
	err := row.Scan(
		&job.ID,
		&job.Query.HotelName,
		&job.Query.CheckIn,
		&job.Query.CheckOut,
		&job.Query.Adults,
		&job.Status,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
