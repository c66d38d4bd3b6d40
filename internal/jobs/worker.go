package jobs

import (
	"context"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/database"
)

// StartWorker polls for pending jobs until ctx is cancelled. One worker per
// process is enough; the claim query skips rows other workers hold.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started", "poll_interval", m.pollInterval)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("job worker stopping")
			return
		case <-ticker.C:
			m.processNextJob(ctx)
		}
	}
}

func (m *Manager) processNextJob(ctx context.Context) {
	job, err := m.jobs.ClaimNext(ctx)
	if err != nil {
		m.logger.Error("failed to claim job", "error", err)
		return
	}
	if job == nil {
		return
	}

	if runErr := m.RunJob(ctx, job); runErr != nil {
		m.logger.Error("job failed", "id", job.ID, "error", runErr)
		if err := m.jobs.UpdateStatus(ctx, job.ID, database.JobStatusFailed, runErr.Error()); err != nil {
			m.logger.Error("failed to update job status", "id", job.ID, "error", err)
		}
		return
	}

	m.logger.Info("job finished", "id", job.ID)
}
