package repository

import (
	"context"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// documentRow is the snake_case shape of the documents table.
type documentRow struct {
	ID               string                  `json:"id"`
	Filename         string                  `json:"filename"`
	Type             domain.DocumentType     `json:"type"`
	Subject          *domain.Subject         `json:"subject"`
	Content          *string                 `json:"content"`
	ProcessingStatus domain.ProcessingStatus `json:"processing_status"`
	Metadata         domain.DocumentMetadata `json:"metadata"`
	CreatedAt        time.Time               `json:"created_at"`
}

func toDocumentRow(d *domain.Document) documentRow {
	return documentRow{
		ID:               d.ID,
		Filename:         d.Filename,
		Type:             d.Type,
		Subject:          d.Subject,
		Content:          stripNULPtr(d.Content),
		ProcessingStatus: d.ProcessingStatus,
		Metadata:         d.Metadata,
		CreatedAt:        d.CreatedAt,
	}
}

func (r documentRow) toDomain() *domain.Document {
	return &domain.Document{
		ID:               r.ID,
		Filename:         r.Filename,
		Type:             r.Type,
		Subject:          r.Subject,
		Content:          r.Content,
		ProcessingStatus: r.ProcessingStatus,
		Metadata:         r.Metadata,
		CreatedAt:        r.CreatedAt,
	}
}

// SupabaseDocumentRepository implements domain.DocumentRepository over PostgREST.
type SupabaseDocumentRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseDocumentRepository creates a new Supabase document repository
func NewSupabaseDocumentRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.DocumentRepository {
	return &SupabaseDocumentRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create inserts a new document row.
func (r *SupabaseDocumentRepository) Create(ctx context.Context, document *domain.Document) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	_, _, err = client.From(tableDocuments).Insert(toDocumentRow(document), false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert document in Supabase", err, "doc_id", document.ID)
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.logger.Debug("Document created", "id", document.ID, "type", document.Type)
	return nil
}

// GetByID retrieves a document by ID
func (r *SupabaseDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableDocuments).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	rows, err := decodeRows[documentRow](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return rows[0].toDomain(), nil
}

// List returns documents matching the filter, oldest first.
func (r *SupabaseDocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	query := client.From(tableDocuments).Select("*", "", false)
	if filter.Type != "" {
		query = query.Eq("type", string(filter.Type))
	}
	if filter.Subject != "" {
		query = query.Eq("subject", string(filter.Subject))
	}

	data, _, err := query.Order("created_at", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	rows, err := decodeRows[documentRow](data)
	if err != nil {
		return nil, err
	}
	documents := make([]*domain.Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, row.toDomain())
	}
	return documents, nil
}

// UpdateContent stores extracted text.
func (r *SupabaseDocumentRepository) UpdateContent(ctx context.Context, id string, content string) error {
	return r.update(id, map[string]interface{}{"content": stripNUL(content)})
}

// UpdateStatus sets processing_status.
func (r *SupabaseDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) error {
	return r.update(id, map[string]interface{}{"processing_status": status})
}

// UpdateMetadata replaces the metadata column.
func (r *SupabaseDocumentRepository) UpdateMetadata(ctx context.Context, id string, metadata domain.DocumentMetadata) error {
	return r.update(id, map[string]interface{}{"metadata": metadata})
}

func (r *SupabaseDocumentRepository) update(id string, data map[string]interface{}) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	_, _, err = client.From(tableDocuments).
		Update(data, "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}
