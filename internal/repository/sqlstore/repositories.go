package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"question-bank/internal/domain"

	"gorm.io/gorm"
)

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// DocumentRepository implements domain.DocumentRepository.
type DocumentRepository struct {
	db *gorm.DB
}

func (r *DocumentRepository) Create(ctx context.Context, document *domain.Document) error {
	if err := r.db.WithContext(ctx).Create(toDocumentModel(document)).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var m documentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrDocumentNotFound)
	}
	return m.toDomain(), nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	q := r.db.WithContext(ctx).Model(&documentModel{})
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", string(filter.Subject))
	}

	var rows []documentModel
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	out := make([]*domain.Document, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, id string, content string) error {
	return r.update(ctx, id, map[string]interface{}{"content": content})
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) error {
	return r.update(ctx, id, map[string]interface{}{"processing_status": string(status)})
}

func (r *DocumentRepository) UpdateMetadata(ctx context.Context, id string, metadata domain.DocumentMetadata) error {
	return r.update(ctx, id, map[string]interface{}{"metadata": jsonColumn(metadata)})
}

func (r *DocumentRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&documentModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// TopicRepository implements domain.TopicRepository.
type TopicRepository struct {
	db *gorm.DB
}

func (r *TopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	if err := r.db.WithContext(ctx).Create(toTopicModel(topic)).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func (r *TopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	var m topicModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrTopicNotFound)
	}
	return m.toDomain(), nil
}

func (r *TopicRepository) ListBySubject(ctx context.Context, subject domain.Subject) ([]*domain.Topic, error) {
	var rows []topicModel
	err := r.db.WithContext(ctx).
		Where("subject = ?", string(subject)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	out := make([]*domain.Topic, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// QuestionRepository implements domain.QuestionRepository.
type QuestionRepository struct {
	db *gorm.DB
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	if err := r.db.WithContext(ctx).Create(toQuestionModel(question)).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) ListByTopic(ctx context.Context, topicID string) ([]*domain.Question, error) {
	var rows []questionModel
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	out := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// JobRepository implements domain.JobRepository.
type JobRepository struct {
	db *gorm.DB
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ProcessingJob) error {
	if err := r.db.WithContext(ctx).Create(toJobModel(job)).Error; err != nil {
		return fmt.Errorf("failed to create processing job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	var m jobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrJobNotFound)
	}
	return m.toDomain(), nil
}

// Update writes every mutable column without a version check.
func (r *JobRepository) Update(ctx context.Context, job *domain.ProcessingJob) error {
	m := toJobModel(job)
	res := r.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":         m.Status,
		"progress":       m.Progress,
		"status_message": m.StatusMessage,
		"result":         m.Result,
		"error":          m.Error,
		"updated_at":     m.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update processing job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobRepository) ListActive(ctx context.Context) ([]*domain.ProcessingJob, error) {
	var rows []jobModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list processing jobs: %w", err)
	}
	out := make([]*domain.ProcessingJob, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// GeneratedPDFRepository implements domain.GeneratedPDFRepository.
type GeneratedPDFRepository struct {
	db *gorm.DB
}

func (r *GeneratedPDFRepository) Create(ctx context.Context, pdf *domain.GeneratedPDF) error {
	if err := r.db.WithContext(ctx).Create(toGeneratedPDFModel(pdf)).Error; err != nil {
		return fmt.Errorf("failed to create generated pdf: %w", err)
	}
	return nil
}

func (r *GeneratedPDFRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedPDF, error) {
	var m generatedPDFModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrGeneratedPDFNotFound)
	}
	return m.toDomain(), nil
}

func (r *GeneratedPDFRepository) List(ctx context.Context) ([]*domain.GeneratedPDF, error) {
	var rows []generatedPDFModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list generated pdfs: %w", err)
	}
	out := make([]*domain.GeneratedPDF, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
