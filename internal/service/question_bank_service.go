package service

import (
	"context"
	"io"

	"question-bank/internal/domain"
)

// QuestionBankService serves the read side of topics, questions and generated PDFs.
type QuestionBankService struct {
	topics    domain.TopicRepository
	questions domain.QuestionRepository
	pdfs      domain.GeneratedPDFRepository
	artifacts domain.ArtifactStore
}

func NewQuestionBankService(
	topics domain.TopicRepository,
	questions domain.QuestionRepository,
	pdfs domain.GeneratedPDFRepository,
	artifacts domain.ArtifactStore,
) *QuestionBankService {
	return &QuestionBankService{topics: topics, questions: questions, pdfs: pdfs, artifacts: artifacts}
}

func (s *QuestionBankService) ListTopics(ctx context.Context, subject domain.Subject) ([]*domain.Topic, error) {
	return s.topics.ListBySubject(ctx, subject)
}

// ListQuestions returns a topic's questions, or ErrTopicNotFound.
func (s *QuestionBankService) ListQuestions(ctx context.Context, topicID string) ([]*domain.Question, error) {
	if _, err := s.topics.GetByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.questions.ListByTopic(ctx, topicID)
}

func (s *QuestionBankService) ListGeneratedPDFs(ctx context.Context) ([]*domain.GeneratedPDF, error) {
	return s.pdfs.List(ctx)
}

func (s *QuestionBankService) GetGeneratedPDF(ctx context.Context, id string) (*domain.GeneratedPDF, error) {
	return s.pdfs.GetByID(ctx, id)
}

func (s *QuestionBankService) OpenGeneratedPDF(ctx context.Context, pdf *domain.GeneratedPDF) (io.ReadCloser, error) {
	return s.artifacts.Open(ctx, pdf.FilePath)
}
