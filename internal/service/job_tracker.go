package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/google/uuid"
)

// JobTracker owns every write to a ProcessingJob and enforces
// pending -> processing -> completed|error. Terminal jobs reject writes.
type JobTracker struct {
	repo   domain.JobRepository
	logger domain.Logger
	now    func() time.Time
}

func NewJobTracker(repo domain.JobRepository, logger domain.Logger) *JobTracker {
	return &JobTracker{repo: repo, logger: logger, now: time.Now}
}

// Create persists a pending job.
func (t *JobTracker) Create(ctx context.Context, jobType domain.JobType, documentIDs []string) (*domain.ProcessingJob, error) {
	if documentIDs == nil {
		documentIDs = []string{}
	}
	now := t.now()
	job := &domain.ProcessingJob{
		ID:          uuid.New().String(),
		Type:        jobType,
		Status:      domain.StatusPending,
		DocumentIDs: documentIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	t.logger.Info("Processing job created", "job_id", job.ID, "type", jobType, "documents", len(documentIDs))
	return job, nil
}

// Progress records a checkpoint. The first call moves the job to processing.
// Progress never decreases.
func (t *JobTracker) Progress(ctx context.Context, id string, progress int, message string) error {
	return t.mutate(ctx, id, func(job *domain.ProcessingJob) error {
		job.Status = domain.StatusProcessing
		if p := clampProgress(progress); p > job.Progress {
			job.Progress = p
		}
		job.StatusMessage = message
		return nil
	})
}

// Complete marks the job completed at 100% with result.
func (t *JobTracker) Complete(ctx context.Context, id string, message string, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}
	return t.mutate(ctx, id, func(job *domain.ProcessingJob) error {
		job.Status = domain.StatusCompleted
		job.Progress = 100
		job.StatusMessage = message
		job.Result = payload
		job.Error = nil
		return nil
	})
}

// Fail marks the job errored, keeping the last progress value.
func (t *JobTracker) Fail(ctx context.Context, id string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return t.mutate(ctx, id, func(job *domain.ProcessingJob) error {
		job.Status = domain.StatusError
		job.StatusMessage = "Failed"
		job.Error = &msg
		return nil
	})
}

func (t *JobTracker) mutate(ctx context.Context, id string, apply func(*domain.ProcessingJob) error) error {
	job, err := t.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return domain.ErrJobFinalized
	}
	if err := apply(job); err != nil {
		return err
	}
	job.UpdatedAt = t.now()
	if err := t.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	t.logger.Debug("Processing job updated", "job_id", id, "status", job.Status, "progress", job.Progress, "message", job.StatusMessage)
	return nil
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
