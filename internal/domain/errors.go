package domain

import "errors"

// Domain errors
var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrTopicNotFound        = errors.New("topic not found")
	ErrJobNotFound          = errors.New("processing job not found")
	ErrGeneratedPDFNotFound = errors.New("generated pdf not found")
	ErrJobFinalized         = errors.New("processing job already finished")
	ErrNoTopics             = errors.New("no topics found for subject")
	ErrNoDocuments          = errors.New("no documents found")
	ErrInvalidFile          = errors.New("invalid file")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
