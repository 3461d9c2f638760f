package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"question-bank/internal/domain"

	"github.com/google/uuid"
)

// DocumentService accepts uploads and runs per-document ingestion in the background.
type DocumentService struct {
	docs        domain.DocumentRepository
	topics      domain.TopicRepository
	extractor   domain.ContentExtractor
	categorizer domain.Categorizer
	writer      *catalogWriter
	runner      *TaskRunner
	logger      domain.Logger
	now         func() time.Time
}

func NewDocumentService(
	docs domain.DocumentRepository,
	topics domain.TopicRepository,
	questions domain.QuestionRepository,
	extractor domain.ContentExtractor,
	categorizer domain.Categorizer,
	runner *TaskRunner,
	logger domain.Logger,
) *DocumentService {
	return &DocumentService{
		docs:        docs,
		topics:      topics,
		extractor:   extractor,
		categorizer: categorizer,
		writer:      &catalogWriter{topics: topics, questions: questions, logger: logger, now: time.Now},
		runner:      runner,
		logger:      logger,
		now:         time.Now,
	}
}

// Upload records one pending document per file and starts ingestion for each.
// It returns before ingestion finishes.
func (s *DocumentService) Upload(ctx context.Context, files []domain.UploadedFile, docType domain.DocumentType, subject *domain.Subject) ([]*domain.Document, error) {
	if len(files) == 0 {
		return nil, &domain.ValidationError{Field: "files", Message: "at least one file is required"}
	}
	if !docType.Valid() {
		return nil, &domain.ValidationError{Field: "type", Message: "must be one of syllabus, pastpaper, markingscheme"}
	}
	if subject != nil && !subject.Valid() {
		return nil, &domain.ValidationError{Field: "subject", Message: "must be one of physics, chemistry, biology"}
	}

	documents := make([]*domain.Document, 0, len(files))
	for _, f := range files {
		now := s.now()
		doc := &domain.Document{
			ID:               uuid.New().String(),
			Filename:         f.OriginalName,
			Type:             docType,
			Subject:          subject,
			ProcessingStatus: domain.StatusPending,
			Metadata: domain.DocumentMetadata{
				OriginalName: f.OriginalName,
				Size:         f.Size,
				MimeType:     f.MimeType,
				UploadedAt:   now,
				SourcePath:   f.Path,
			},
			CreatedAt: now,
		}
		if err := s.docs.Create(ctx, doc); err != nil {
			return documents, fmt.Errorf("failed to create document: %w", err)
		}
		documents = append(documents, doc)

		d, path := *doc, f.Path
		s.runner.Go("ingest:"+doc.ID, func(ctx context.Context) {
			if err := s.Ingest(ctx, &d, path); err != nil {
				s.logger.Error("Document ingestion failed", err, "doc_id", d.ID, "filename", d.Filename)
			}
		})
	}

	s.logger.Info("Documents uploaded", "count", len(documents), "type", docType)
	return documents, nil
}

// Ingest extracts a document's text and, for syllabi and past papers, feeds
// it to the categorizer. Any failure marks the document error and leaves the
// uploaded file in place.
func (s *DocumentService) Ingest(ctx context.Context, doc *domain.Document, path string) error {
	if err := s.ingest(ctx, doc, path); err != nil {
		if uerr := s.docs.UpdateStatus(context.WithoutCancel(ctx), doc.ID, domain.StatusError); uerr != nil {
			s.logger.Error("Failed to mark document as error", uerr, "doc_id", doc.ID)
		}
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove uploaded file", "path", path, "error", err)
	}
	return nil
}

func (s *DocumentService) ingest(ctx context.Context, doc *domain.Document, path string) error {
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		return err
	}

	content, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := s.docs.UpdateContent(ctx, doc.ID, content.Text); err != nil {
		return err
	}
	text := content.Text
	doc.Content = &text

	if content.PageCount > 0 {
		md := doc.Metadata
		md.PageCount = content.PageCount
		if err := s.docs.UpdateMetadata(ctx, doc.ID, md); err != nil {
			s.logger.Warn("Failed to record page count", "doc_id", doc.ID, "error", err)
		} else {
			doc.Metadata = md
		}
	}

	usable := strings.TrimSpace(text) != "" && !domain.IsExtractionPlaceholder(text)
	subject := doc.SubjectOrEmpty()

	switch {
	case !usable:
		s.logger.Warn("Skipping categorization; no usable text", "doc_id", doc.ID)
	case subject == "" && doc.Type != domain.DocumentTypeMarkingScheme:
		s.logger.Warn("Skipping categorization; document has no subject", "doc_id", doc.ID)
	case doc.Type == domain.DocumentTypeSyllabus:
		if err := s.ingestSyllabus(ctx, doc, subject); err != nil {
			return err
		}
	case doc.Type == domain.DocumentTypePastPaper:
		if err := s.ingestPastPaper(ctx, doc, subject); err != nil {
			return err
		}
	}

	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusCompleted); err != nil {
		return err
	}
	doc.ProcessingStatus = domain.StatusCompleted
	s.logger.Info("Document ingested", "doc_id", doc.ID, "type", doc.Type, "chars", len(text))
	return nil
}

func (s *DocumentService) ingestSyllabus(ctx context.Context, doc *domain.Document, subject domain.Subject) error {
	outlines, err := s.categorizer.ExtractTopics(ctx, doc.Text(), subject)
	if err != nil {
		return err
	}
	mains, subs, err := s.writer.saveTaxonomy(ctx, doc.ID, subject, outlines)
	if err != nil {
		return err
	}
	s.logger.Info("Syllabus topics saved", "doc_id", doc.ID, "topics", mains, "subtopics", subs)
	return nil
}

func (s *DocumentService) ingestPastPaper(ctx context.Context, doc *domain.Document, subject domain.Subject) error {
	topics, err := s.topics.ListBySubject(ctx, subject)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		s.logger.Warn("Skipping past paper categorization; no topics for subject", "doc_id", doc.ID, "subject", subject)
		return nil
	}

	categorized, err := s.categorizer.CategorizeQuestions(ctx, doc.Text(), domain.FlattenTaxonomy(topics), subject)
	if err != nil {
		return err
	}
	saved, err := s.writer.saveQuestions(ctx, doc, topics, categorized, false)
	if err != nil {
		return err
	}
	s.logger.Info("Past paper questions saved", "doc_id", doc.ID, "questions", saved)
	return nil
}

func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	return s.docs.List(ctx, filter)
}
