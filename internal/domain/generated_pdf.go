package domain

import (
	"context"
	"io"
	"time"
)

// Sort orders understood by output assembly. Other values keep input order.
const (
	SortByDifficulty   = "difficulty"
	SortByYearNewest   = "year_newest"
	SortByYearOldest   = "year_oldest"
	SortByQuestionType = "question_type"
)

// Layouts understood by the renderer.
const (
	LayoutStandard = "standard"
	LayoutCompact  = "compact"
)

// PDFConfig controls how a topic's questions are assembled.
type PDFConfig struct {
	IncludeQuestionText   bool   `json:"includeQuestionText"`
	IncludeVectorDiagrams bool   `json:"includeVectorDiagrams"`
	IncludeAnswerSchemes  bool   `json:"includeAnswerSchemes"`
	IncludeSourceInfo     bool   `json:"includeSourceInfo"`
	SortBy                string `json:"sortBy"`
	Layout                string `json:"layout" validate:"omitempty,oneof=standard compact"`
}

// DefaultPDFConfig is applied when a request omits config.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		IncludeQuestionText:   true,
		IncludeVectorDiagrams: true,
		IncludeSourceInfo:     true,
		SortBy:                SortByDifficulty,
		Layout:                LayoutStandard,
	}
}

// GeneratedPDF records one successful output assembly run.
type GeneratedPDF struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	TopicID       string    `json:"topicId"`
	Subject       Subject   `json:"subject"`
	MainTopic     string    `json:"mainTopic"`
	Subtopic      *string   `json:"subtopic"`
	QuestionCount int       `json:"questionCount"`
	DiagramCount  int       `json:"diagramCount"`
	FileSize      int64     `json:"fileSize"`
	FilePath      string    `json:"filePath"`
	Configuration PDFConfig `json:"configuration"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GeneratedPDFRepository defines persistence operations for generated PDFs.
type GeneratedPDFRepository interface {
	Create(ctx context.Context, pdf *GeneratedPDF) error
	GetByID(ctx context.Context, id string) (*GeneratedPDF, error)
	List(ctx context.Context) ([]*GeneratedPDF, error)
}

// RenderInput is everything the renderer needs for one artifact.
type RenderInput struct {
	Title     string
	Subject   Subject
	MainTopic string
	Subtopic  *string
	Questions []*Question
	Config    PDFConfig
}

// PDFRenderer turns ordered questions into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, input RenderInput) ([]byte, error)
}

// ArtifactStore persists rendered artifacts and reads them back.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// QuestionBankService exposes the read side used by the builder UI.
type QuestionBankService interface {
	ListTopics(ctx context.Context, subject Subject) ([]*Topic, error)
	ListQuestions(ctx context.Context, topicID string) ([]*Question, error)
	ListGeneratedPDFs(ctx context.Context) ([]*GeneratedPDF, error)
	GetGeneratedPDF(ctx context.Context, id string) (*GeneratedPDF, error)
	OpenGeneratedPDF(ctx context.Context, pdf *GeneratedPDF) (io.ReadCloser, error)
}
