package service

import (
	"context"
	"fmt"
	"time"

	"question-bank/internal/domain"

	"github.com/google/uuid"
)

// catalogWriter persists extracted topics and categorized questions.
type catalogWriter struct {
	topics    domain.TopicRepository
	questions domain.QuestionRepository
	logger    domain.Logger
	now       func() time.Time
}

// saveTaxonomy appends one main-topic row per outline followed by one row per
// subtopic. It returns the main-topic and subtopic row counts. Rows already
// written stay in place when a later insert fails.
func (w *catalogWriter) saveTaxonomy(ctx context.Context, documentID string, subject domain.Subject, outlines []domain.TopicOutline) (int, int, error) {
	mainCount, subCount := 0, 0
	for _, o := range outlines {
		main := &domain.Topic{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			Subject:     subject,
			MainTopic:   o.MainTopic,
			Description: o.Description,
			CreatedAt:   w.now(),
		}
		if err := w.topics.Create(ctx, main); err != nil {
			return mainCount, subCount, fmt.Errorf("failed to save topic %q: %w", o.MainTopic, err)
		}
		mainCount++

		for _, name := range o.Subtopics {
			sub := name
			row := &domain.Topic{
				ID:          uuid.New().String(),
				DocumentID:  documentID,
				Subject:     subject,
				MainTopic:   o.MainTopic,
				Subtopic:    &sub,
				Description: domain.SubtopicDescription(sub),
				CreatedAt:   w.now(),
			}
			if err := w.topics.Create(ctx, row); err != nil {
				return mainCount, subCount, fmt.Errorf("failed to save subtopic %q: %w", sub, err)
			}
			subCount++
		}
	}
	return mainCount, subCount, nil
}

// saveQuestions matches each categorized question to a topic row and persists
// it. Unmatched questions are dropped. Returns the number saved.
func (w *catalogWriter) saveQuestions(ctx context.Context, doc *domain.Document, topics []*domain.Topic, categorized []domain.CategorizedQuestion, strictSubtopic bool) (int, error) {
	year := domain.InferPaperYear(doc.Filename)
	session := domain.InferPaperSession(doc.Filename)

	saved, dropped := 0, 0
	for _, cq := range categorized {
		topic := domain.MatchTopic(topics, cq.TopicMatch, cq.SubtopicMatch, strictSubtopic)
		if topic == nil {
			dropped++
			continue
		}

		marks := 0
		if cq.Marks != nil {
			marks = *cq.Marks
		}
		difficulty := cq.Difficulty
		if difficulty == "" {
			difficulty = domain.DifficultyMedium
		}

		q := &domain.Question{
			ID:               uuid.New().String(),
			DocumentID:       doc.ID,
			TopicID:          topic.ID,
			QuestionText:     cq.QuestionText,
			QuestionNumber:   cq.QuestionNumber,
			PaperYear:        year,
			PaperSession:     session,
			HasVectorDiagram: cq.HasVectorDiagram,
			Difficulty:       difficulty,
			Marks:            marks,
			CreatedAt:        w.now(),
		}
		if err := w.questions.Create(ctx, q); err != nil {
			return saved, fmt.Errorf("failed to save question %q: %w", cq.QuestionNumber, err)
		}
		saved++
	}

	if dropped > 0 {
		w.logger.Warn("Dropped questions with no matching topic", "doc_id", doc.ID, "dropped", dropped)
	}
	return saved, nil
}
