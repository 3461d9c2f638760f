package repository

import (
	"context"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

type topicRow struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id"`
	Subject     domain.Subject `json:"subject"`
	MainTopic   string         `json:"main_topic"`
	Subtopic    *string        `json:"subtopic"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (r topicRow) toDomain() *domain.Topic {
	return &domain.Topic{
		ID:          r.ID,
		DocumentID:  r.DocumentID,
		Subject:     r.Subject,
		MainTopic:   r.MainTopic,
		Subtopic:    r.Subtopic,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

// SupabaseTopicRepository implements domain.TopicRepository over PostgREST.
type SupabaseTopicRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseTopicRepository creates a new Supabase topic repository
func NewSupabaseTopicRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.TopicRepository {
	return &SupabaseTopicRepository{supabaseClient: supabaseClient, logger: logger}
}

// Create appends a topic row. Duplicates are allowed.
func (r *SupabaseTopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	row := topicRow{
		ID:          topic.ID,
		DocumentID:  topic.DocumentID,
		Subject:     topic.Subject,
		MainTopic:   stripNUL(topic.MainTopic),
		Subtopic:    stripNULPtr(topic.Subtopic),
		Description: stripNUL(topic.Description),
		CreatedAt:   topic.CreatedAt,
	}
	if _, _, err := client.From(tableTopics).Insert(row, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetByID retrieves a topic by ID
func (r *SupabaseTopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableTopics).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	rows, err := decodeRows[topicRow](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrTopicNotFound
	}
	return rows[0].toDomain(), nil
}

// ListBySubject returns the subject's taxonomy in insertion order.
func (r *SupabaseTopicRepository) ListBySubject(ctx context.Context, subject domain.Subject) ([]*domain.Topic, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableTopics).
		Select("*", "", false).
		Eq("subject", string(subject)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	rows, err := decodeRows[topicRow](data)
	if err != nil {
		return nil, err
	}
	topics := make([]*domain.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toDomain())
	}
	return topics, nil
}
