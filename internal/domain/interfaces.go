package domain

import (
	"context"
	"strings"
	"time"
)

// ExtractionErrorPrefix marks content that is a placeholder for a failed extraction.
const ExtractionErrorPrefix = "[extraction-error]"

// IsExtractionPlaceholder reports whether text is a failed-extraction placeholder.
func IsExtractionPlaceholder(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), ExtractionErrorPrefix)
}

// ExtractedContent is the result of reading an uploaded file.
type ExtractedContent struct {
	Text      string
	PageCount int
}

// ContentExtractor reads text from a file on disk. Parse failures yield a
// placeholder text rather than an error.
type ContentExtractor interface {
	Extract(ctx context.Context, path string) (*ExtractedContent, error)
}

// Categorizer is the LLM-backed topic extraction and question categorization service.
type Categorizer interface {
	ExtractTopics(ctx context.Context, text string, subject Subject) ([]TopicOutline, error)
	CategorizeQuestions(ctx context.Context, text string, taxonomy []TopicOutline, subject Subject) ([]CategorizedQuestion, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetOutputPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string
	GetDatabaseDriver() string
	GetDatabaseDSN() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
	GetArtifactStore() string
	GetLLMProvider() string
	GetLLMModel() string
	GetGCPProjectID() string
	GetGCPLocation() string
	GetGeminiAPIKey() string
	GetAnthropicAPIKey() string
	GetLLMRequestsPerMinute() int
	GetLLMMaxInputChars() int
	GetUploadRetention() time.Duration
	GetUploadSweepSchedule() string
	GetAllowedOrigins() []string
	GetShutdownTimeout() time.Duration
}
