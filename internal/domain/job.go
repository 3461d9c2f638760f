package domain

import (
	"context"
	"encoding/json"
	"time"
)

// JobType identifies which procedure owns a job.
type JobType string

const (
	JobTypeSyllabusAnalysis   JobType = "syllabus_analysis"
	JobTypeQuestionExtraction JobType = "question_extraction"
	JobTypePDFGeneration      JobType = "pdf_generation"
)

// ProcessingJob tracks a long-running procedure. Clients poll it.
type ProcessingJob struct {
	ID            string           `json:"id"`
	Type          JobType          `json:"type"`
	Status        ProcessingStatus `json:"status"`
	Progress      int              `json:"progress"`
	StatusMessage string           `json:"statusMessage"`
	DocumentIDs   []string         `json:"documentIds"`
	Result        json.RawMessage  `json:"result"`
	Error         *string          `json:"error"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// DecodeResult unmarshals the job result into v.
func (j *ProcessingJob) DecodeResult(v interface{}) error {
	if len(j.Result) == 0 {
		return nil
	}
	return json.Unmarshal(j.Result, v)
}

// SyllabusAnalysisResult is stored on completed syllabus_analysis jobs.
type SyllabusAnalysisResult struct {
	TopicCount    int            `json:"topicCount"`
	SubtopicCount int            `json:"subtopicCount"`
	Topics        []TopicOutline `json:"topics"`
}

// QuestionExtractionResult is stored on completed question_extraction jobs.
type QuestionExtractionResult struct {
	DocumentsProcessed int `json:"documentsProcessed"`
	QuestionsExtracted int `json:"questionsExtracted"`
}

// PDFGenerationResult is stored on completed pdf_generation jobs.
type PDFGenerationResult struct {
	PDFID         string `json:"pdfId"`
	Filename      string `json:"filename"`
	QuestionCount int    `json:"questionCount"`
	DiagramCount  int    `json:"diagramCount"`
	FileSize      int64  `json:"fileSize"`
}

// JobRepository defines persistence operations for processing jobs.
type JobRepository interface {
	Create(ctx context.Context, job *ProcessingJob) error
	GetByID(ctx context.Context, id string) (*ProcessingJob, error)
	Update(ctx context.Context, job *ProcessingJob) error
	ListActive(ctx context.Context) ([]*ProcessingJob, error)
}

// ProcessingService starts background procedures and exposes their jobs.
type ProcessingService interface {
	StartSyllabusAnalysis(ctx context.Context, subject Subject) (string, error)
	StartPastPaperCategorization(ctx context.Context, subject Subject) (string, error)
	StartPDFGeneration(ctx context.Context, topicID string, config PDFConfig) (string, error)
	GetJob(ctx context.Context, id string) (*ProcessingJob, error)
	ListActiveJobs(ctx context.Context) ([]*ProcessingJob, error)
}
