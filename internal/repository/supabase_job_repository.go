package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

type jobRow struct {
	ID            string                  `json:"id"`
	Type          domain.JobType          `json:"type"`
	Status        domain.ProcessingStatus `json:"status"`
	Progress      int                     `json:"progress"`
	StatusMessage string                  `json:"status_message"`
	DocumentIDs   []string                `json:"document_ids"`
	Result        json.RawMessage         `json:"result"`
	Error         *string                 `json:"error"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func toJobRow(j *domain.ProcessingJob) jobRow {
	ids := j.DocumentIDs
	if ids == nil {
		ids = []string{}
	}
	return jobRow{
		ID:            j.ID,
		Type:          j.Type,
		Status:        j.Status,
		Progress:      j.Progress,
		StatusMessage: j.StatusMessage,
		DocumentIDs:   ids,
		Result:        j.Result,
		Error:         j.Error,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func (r jobRow) toDomain() *domain.ProcessingJob {
	result := r.Result
	if string(result) == "null" {
		result = nil
	}
	return &domain.ProcessingJob{
		ID:            r.ID,
		Type:          r.Type,
		Status:        r.Status,
		Progress:      r.Progress,
		StatusMessage: r.StatusMessage,
		DocumentIDs:   r.DocumentIDs,
		Result:        result,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// SupabaseJobRepository implements domain.JobRepository over PostgREST.
type SupabaseJobRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseJobRepository creates a new Supabase job repository
func NewSupabaseJobRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.JobRepository {
	return &SupabaseJobRepository{supabaseClient: supabaseClient, logger: logger}
}

func (r *SupabaseJobRepository) Create(ctx context.Context, job *domain.ProcessingJob) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}
	if _, _, err := client.From(tableJobs).Insert(toJobRow(job), false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create processing job: %w", err)
	}
	return nil
}

func (r *SupabaseJobRepository) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableJobs).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get processing job: %w", err)
	}
	rows, err := decodeRows[jobRow](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrJobNotFound
	}
	return rows[0].toDomain(), nil
}

// Update overwrites the mutable columns unconditionally.
func (r *SupabaseJobRepository) Update(ctx context.Context, job *domain.ProcessingJob) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"status":         job.Status,
		"progress":       job.Progress,
		"status_message": job.StatusMessage,
		"result":         job.Result,
		"error":          job.Error,
		"updated_at":     job.UpdatedAt,
	}
	if _, _, err := client.From(tableJobs).Update(data, "", "").Eq("id", job.ID).Execute(); err != nil {
		return fmt.Errorf("failed to update processing job: %w", err)
	}
	return nil
}

// ListActive returns pending and processing jobs, newest first.
func (r *SupabaseJobRepository) ListActive(ctx context.Context) ([]*domain.ProcessingJob, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableJobs).
		Select("*", "", false).
		In("status", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list processing jobs: %w", err)
	}
	rows, err := decodeRows[jobRow](data)
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.ProcessingJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toDomain())
	}
	return jobs, nil
}
