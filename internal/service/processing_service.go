package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"question-bank/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const reextractWorkers = 4

// Checkpoint messages written to job records.
const (
	msgReadingDocuments = "Reading documents"
	msgAnalyzing        = "Analyzing with AI"
	msgSavingTopics     = "Saving topics"
	msgLoadingTaxonomy  = "Loading topic taxonomy"
	msgCategorizing     = "Categorizing questions"
	msgOrganizing       = "Organizing questions"
	msgDiagrams         = "Extracting diagrams"
	msgFinalizing       = "Finalizing PDF"
	msgCompleted        = "Completed"
)

// ProcessingService starts the long-running procedures as background tasks
// reporting through a polled job record.
type ProcessingService struct {
	docs        domain.DocumentRepository
	topics      domain.TopicRepository
	questions   domain.QuestionRepository
	pdfs        domain.GeneratedPDFRepository
	jobs        domain.JobRepository
	tracker     *JobTracker
	extractor   domain.ContentExtractor
	categorizer domain.Categorizer
	renderer    domain.PDFRenderer
	artifacts   domain.ArtifactStore
	writer      *catalogWriter
	runner      *TaskRunner
	logger      domain.Logger
	now         func() time.Time
}

// ProcessingDeps groups the collaborators of ProcessingService.
type ProcessingDeps struct {
	Documents     domain.DocumentRepository
	Topics        domain.TopicRepository
	Questions     domain.QuestionRepository
	GeneratedPDFs domain.GeneratedPDFRepository
	Jobs          domain.JobRepository
	Extractor     domain.ContentExtractor
	Categorizer   domain.Categorizer
	Renderer      domain.PDFRenderer
	Artifacts     domain.ArtifactStore
	Runner        *TaskRunner
	Logger        domain.Logger
}

func NewProcessingService(d ProcessingDeps) *ProcessingService {
	return &ProcessingService{
		docs:        d.Documents,
		topics:      d.Topics,
		questions:   d.Questions,
		pdfs:        d.GeneratedPDFs,
		jobs:        d.Jobs,
		tracker:     NewJobTracker(d.Jobs, d.Logger),
		extractor:   d.Extractor,
		categorizer: d.Categorizer,
		renderer:    d.Renderer,
		artifacts:   d.Artifacts,
		writer:      &catalogWriter{topics: d.Topics, questions: d.Questions, logger: d.Logger, now: time.Now},
		runner:      d.Runner,
		logger:      d.Logger,
		now:         time.Now,
	}
}

func (s *ProcessingService) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *ProcessingService) ListActiveJobs(ctx context.Context) ([]*domain.ProcessingJob, error) {
	return s.jobs.ListActive(ctx)
}

// StartSyllabusAnalysis creates a syllabus_analysis job over every syllabus
// of subject and returns its id.
func (s *ProcessingService) StartSyllabusAnalysis(ctx context.Context, subject domain.Subject) (string, error) {
	docs, err := s.docs.List(ctx, domain.DocumentFilter{Type: domain.DocumentTypeSyllabus, Subject: subject})
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no syllabus documents for %s", domain.ErrNoDocuments, subject)
	}

	job, err := s.tracker.Create(ctx, domain.JobTypeSyllabusAnalysis, documentIDs(docs))
	if err != nil {
		return "", err
	}
	s.runner.Go("syllabus_analysis:"+job.ID, func(ctx context.Context) {
		s.finish(ctx, job.ID, s.runSyllabusAnalysis(ctx, job.ID, docs, subject))
	})
	return job.ID, nil
}

// StartPastPaperCategorization creates a question_extraction job over every
// past paper of subject. The subject must already have topics.
func (s *ProcessingService) StartPastPaperCategorization(ctx context.Context, subject domain.Subject) (string, error) {
	topics, err := s.topics.ListBySubject(ctx, subject)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return "", domain.ErrNoTopics
	}

	docs, err := s.docs.List(ctx, domain.DocumentFilter{Type: domain.DocumentTypePastPaper, Subject: subject})
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no past papers for %s", domain.ErrNoDocuments, subject)
	}

	job, err := s.tracker.Create(ctx, domain.JobTypeQuestionExtraction, documentIDs(docs))
	if err != nil {
		return "", err
	}
	s.runner.Go("question_extraction:"+job.ID, func(ctx context.Context) {
		s.finish(ctx, job.ID, s.runPastPaperCategorization(ctx, job.ID, docs, topics, subject))
	})
	return job.ID, nil
}

// StartPDFGeneration creates a pdf_generation job for one topic.
func (s *ProcessingService) StartPDFGeneration(ctx context.Context, topicID string, config domain.PDFConfig) (string, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return "", err
	}

	job, err := s.tracker.Create(ctx, domain.JobTypePDFGeneration, nil)
	if err != nil {
		return "", err
	}
	s.runner.Go("pdf_generation:"+job.ID, func(ctx context.Context) {
		s.finish(ctx, job.ID, s.runPDFGeneration(ctx, job.ID, topic, config))
	})
	return job.ID, nil
}

// finish records a procedure failure on its job.
func (s *ProcessingService) finish(ctx context.Context, jobID string, err error) {
	if err == nil {
		return
	}
	s.logger.Error("Processing job failed", err, "job_id", jobID)
	if ferr := s.tracker.Fail(context.WithoutCancel(ctx), jobID, err); ferr != nil {
		s.logger.Error("Failed to record job failure", ferr, "job_id", jobID)
	}
}

func (s *ProcessingService) runSyllabusAnalysis(ctx context.Context, jobID string, docs []*domain.Document, subject domain.Subject) error {
	if err := s.tracker.Progress(ctx, jobID, 10, msgReadingDocuments); err != nil {
		return err
	}

	texts, err := s.collectTexts(ctx, docs)
	if err != nil {
		return err
	}
	combined := strings.Join(texts, "\n\n")
	if strings.TrimSpace(combined) == "" {
		return fmt.Errorf("no readable syllabus content")
	}

	if err := s.tracker.Progress(ctx, jobID, 30, msgAnalyzing); err != nil {
		return err
	}
	outlines, err := s.categorizer.ExtractTopics(ctx, combined, subject)
	if err != nil {
		return err
	}

	if err := s.tracker.Progress(ctx, jobID, 60, msgSavingTopics); err != nil {
		return err
	}
	mains, subs, err := s.writer.saveTaxonomy(ctx, docs[0].ID, subject, outlines)
	if err != nil {
		return err
	}

	s.logger.Info("Syllabus analysis completed", "job_id", jobID, "topics", mains, "subtopics", subs)
	return s.tracker.Complete(ctx, jobID, msgCompleted, domain.SyllabusAnalysisResult{
		TopicCount:    mains,
		SubtopicCount: subs,
		Topics:        outlines,
	})
}

// collectTexts returns each document's usable text in input order,
// re-extracting and persisting content for documents that have none.
func (s *ProcessingService) collectTexts(ctx context.Context, docs []*domain.Document) ([]string, error) {
	texts := make([]string, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reextractWorkers)
	for i, doc := range docs {
		if doc.Content != nil && strings.TrimSpace(*doc.Content) != "" {
			texts[i] = *doc.Content
			continue
		}
		g.Go(func() error {
			content, err := s.extractor.Extract(gctx, doc.Metadata.SourcePath)
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", doc.Filename, err)
			}
			if err := s.docs.UpdateContent(gctx, doc.ID, content.Text); err != nil {
				return err
			}
			texts[i] = content.Text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usable := texts[:0]
	for _, t := range texts {
		if strings.TrimSpace(t) != "" && !domain.IsExtractionPlaceholder(t) {
			usable = append(usable, t)
		}
	}
	return usable, nil
}

func (s *ProcessingService) runPastPaperCategorization(ctx context.Context, jobID string, docs []*domain.Document, topics []*domain.Topic, subject domain.Subject) error {
	if err := s.tracker.Progress(ctx, jobID, 10, msgLoadingTaxonomy); err != nil {
		return err
	}
	taxonomy := domain.FlattenTaxonomy(topics)

	if err := s.tracker.Progress(ctx, jobID, 20, msgCategorizing); err != nil {
		return err
	}

	total := len(docs)
	processed, extracted := 0, 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		text := doc.Text()
		switch {
		case strings.TrimSpace(text) == "":
			s.logger.Warn("Skipping past paper with no text", "job_id", jobID, "doc_id", doc.ID)
		case domain.IsExtractionPlaceholder(text):
			s.logger.Warn("Skipping past paper with failed extraction", "job_id", jobID, "doc_id", doc.ID)
		default:
			n, err := s.categorizeDocument(ctx, doc, taxonomy, topics, subject)
			if err != nil {
				s.logger.Error("Past paper categorization failed", err, "job_id", jobID, "doc_id", doc.ID)
			}
			extracted += n
		}

		processed++
		progress := 20 + (60*processed)/total
		if err := s.tracker.Progress(ctx, jobID, progress, fmt.Sprintf("Processed %d of %d documents", processed, total)); err != nil {
			return err
		}
	}

	s.logger.Info("Past paper categorization completed", "job_id", jobID, "documents", processed, "questions", extracted)
	return s.tracker.Complete(ctx, jobID, msgCompleted, domain.QuestionExtractionResult{
		DocumentsProcessed: processed,
		QuestionsExtracted: extracted,
	})
}

func (s *ProcessingService) categorizeDocument(ctx context.Context, doc *domain.Document, taxonomy []domain.TopicOutline, topics []*domain.Topic, subject domain.Subject) (int, error) {
	categorized, err := s.categorizer.CategorizeQuestions(ctx, doc.Text(), taxonomy, subject)
	if err != nil {
		return 0, err
	}
	return s.writer.saveQuestions(ctx, doc, topics, categorized, true)
}

func (s *ProcessingService) runPDFGeneration(ctx context.Context, jobID string, topic *domain.Topic, config domain.PDFConfig) error {
	if err := s.tracker.Progress(ctx, jobID, 25, msgOrganizing); err != nil {
		return err
	}
	questions, err := s.questions.ListByTopic(ctx, topic.ID)
	if err != nil {
		return err
	}
	ordered := OrganizeQuestions(questions, config)

	if err := s.tracker.Progress(ctx, jobID, 50, msgDiagrams); err != nil {
		return err
	}
	diagrams := CountDiagrams(ordered, config)

	if err := s.tracker.Progress(ctx, jobID, 75, msgFinalizing); err != nil {
		return err
	}
	data, err := s.renderer.Render(ctx, domain.RenderInput{
		Title:     topicTitle(topic),
		Subject:   topic.Subject,
		MainTopic: topic.MainTopic,
		Subtopic:  topic.Subtopic,
		Questions: ordered,
		Config:    config,
	})
	if err != nil {
		return err
	}

	now := s.now()
	filename := artifactFilename(topic, now)
	path, err := s.artifacts.Save(ctx, filename, data)
	if err != nil {
		return err
	}

	record := &domain.GeneratedPDF{
		ID:            uuid.New().String(),
		Filename:      filename,
		TopicID:       topic.ID,
		Subject:       topic.Subject,
		MainTopic:     topic.MainTopic,
		Subtopic:      topic.Subtopic,
		QuestionCount: len(ordered),
		DiagramCount:  diagrams,
		FileSize:      int64(len(data)),
		FilePath:      path,
		Configuration: config,
		CreatedAt:     now,
	}
	if err := s.pdfs.Create(ctx, record); err != nil {
		return err
	}

	s.logger.Info("PDF generated", "job_id", jobID, "pdf_id", record.ID, "questions", record.QuestionCount)
	return s.tracker.Complete(ctx, jobID, msgCompleted, domain.PDFGenerationResult{
		PDFID:         record.ID,
		Filename:      record.Filename,
		QuestionCount: record.QuestionCount,
		DiagramCount:  record.DiagramCount,
		FileSize:      record.FileSize,
	})
}

func documentIDs(docs []*domain.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}
