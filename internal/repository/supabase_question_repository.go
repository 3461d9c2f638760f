package repository

import (
	"context"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

type questionRow struct {
	ID               string            `json:"id"`
	DocumentID       string            `json:"document_id"`
	TopicID          string            `json:"topic_id"`
	QuestionText     string            `json:"question_text"`
	QuestionNumber   string            `json:"question_number"`
	PaperYear        string            `json:"paper_year"`
	PaperSession     string            `json:"paper_session"`
	HasVectorDiagram bool              `json:"has_vector_diagram"`
	DiagramData      *string           `json:"diagram_data"`
	Difficulty       domain.Difficulty `json:"difficulty"`
	Marks            int               `json:"marks"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (r questionRow) toDomain() *domain.Question {
	return &domain.Question{
		ID:               r.ID,
		DocumentID:       r.DocumentID,
		TopicID:          r.TopicID,
		QuestionText:     r.QuestionText,
		QuestionNumber:   r.QuestionNumber,
		PaperYear:        r.PaperYear,
		PaperSession:     r.PaperSession,
		HasVectorDiagram: r.HasVectorDiagram,
		DiagramData:      r.DiagramData,
		Difficulty:       r.Difficulty,
		Marks:            r.Marks,
		CreatedAt:        r.CreatedAt,
	}
}

// SupabaseQuestionRepository implements domain.QuestionRepository over PostgREST.
type SupabaseQuestionRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseQuestionRepository creates a new Supabase question repository
func NewSupabaseQuestionRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.QuestionRepository {
	return &SupabaseQuestionRepository{supabaseClient: supabaseClient, logger: logger}
}

// Create inserts a categorized question.
func (r *SupabaseQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return err
	}

	row := questionRow{
		ID:               q.ID,
		DocumentID:       q.DocumentID,
		TopicID:          q.TopicID,
		QuestionText:     stripNUL(q.QuestionText),
		QuestionNumber:   stripNUL(q.QuestionNumber),
		PaperYear:        q.PaperYear,
		PaperSession:     q.PaperSession,
		HasVectorDiagram: q.HasVectorDiagram,
		DiagramData:      stripNULPtr(q.DiagramData),
		Difficulty:       q.Difficulty,
		Marks:            q.Marks,
		CreatedAt:        q.CreatedAt,
	}
	if _, _, err := client.From(tableQuestions).Insert(row, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// ListByTopic returns a topic's questions in insertion order.
func (r *SupabaseQuestionRepository) ListByTopic(ctx context.Context, topicID string) ([]*domain.Question, error) {
	client, err := dbClient(r.supabaseClient)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(tableQuestions).
		Select("*", "", false).
		Eq("topic_id", topicID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	rows, err := decodeRows[questionRow](data)
	if err != nil {
		return nil, err
	}
	questions := make([]*domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toDomain())
	}
	return questions, nil
}
