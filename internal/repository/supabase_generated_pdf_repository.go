package repository

import (
	"context"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

type generatedPDFRow struct {
	ID            string           `json:"id"`
	Filename      string           `json:"filename"`
	TopicID       string           `json:"topic_id"`
	Subject       domain.Subject   `json:"subject"`
	MainTopic     string           `json:"main_topic"`
	Subtopic      *string          `json:"subtopic"`
	QuestionCount int              `json:"question_count"`
	DiagramCount  int              `json:"diagram_count"`
	FileSize      int64            `json:"file_size"`
	FilePath      string           `json:"file_path"`
	Configuration domain.PDFConfig `json:"configuration"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (r generatedPDFRow) toDomain() *domain.GeneratedPDF {
	return &domain.GeneratedPDF{
		ID:            r.ID,
		Filename:      r.Filename,
		TopicID:       r.TopicID,
		Subject:       r.Subject,
		MainTopic:     r.MainTopic,
		Subtopic:      r.Subtopic,
		QuestionCount: r.QuestionCount,
		DiagramCount:  r.DiagramCount,
		FileSize:      r.FileSize,
		FilePath:      r.FilePath,
		Configuration: r.Configuration,
		CreatedAt:     r.CreatedAt,
	}
}

// SupabaseGeneratedPDFRepository implements domain.GeneratedPDFRepository over PostgREST.
type SupabaseGeneratedPDFRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseGeneratedPDFRepository creates a new Supabase generated PDF repository
func NewSupabaseGeneratedPDFRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.GeneratedPDFRepository {
	return &SupabaseGeneratedPDFRepository{supabaseClient: supabaseClient, logger: logger}
}

func (r *SupabaseGeneratedPDFRepository) Create(ctx context.Context, pdf *domain.GeneratedPDF) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	row := generatedPDFRow{
		ID:            pdf.ID,
		Filename:      pdf.Filename,
		TopicID:       pdf.TopicID,
		Subject:       pdf.Subject,
		MainTopic:     pdf.MainTopic,
		Subtopic:      pdf.Subtopic,
		QuestionCount: pdf.QuestionCount,
		DiagramCount:  pdf.DiagramCount,
		FileSize:      pdf.FileSize,
		FilePath:      pdf.FilePath,
		Configuration: pdf.Configuration,
		CreatedAt:     pdf.CreatedAt,
	}
	if _, _, err := client.From(tableGeneratedPDFs).Insert(row, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create generated pdf: %w", err)
	}
	return nil
}

func (r *SupabaseGeneratedPDFRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedPDF, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableGeneratedPDFs).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get generated pdf: %w", err)
	}
	rows, err := decodeRows[generatedPDFRow](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrGeneratedPDFNotFound
	}
	return rows[0].toDomain(), nil
}

// List returns generated PDFs, newest first.
func (r *SupabaseGeneratedPDFRepository) List(ctx context.Context) ([]*domain.GeneratedPDF, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableGeneratedPDFs).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list generated pdfs: %w", err)
	}
	rows, err := decodeRows[generatedPDFRow](data)
	if err != nil {
		return nil, err
	}
	pdfs := make([]*domain.GeneratedPDF, 0, len(rows))
	for _, row := range rows {
		pdfs = append(pdfs, row.toDomain())
	}
	return pdfs, nil
}
