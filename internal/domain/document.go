package domain

import (
	"context"
	"strings"
	"time"
)

// DocumentType classifies an uploaded file.
type DocumentType string

const (
	DocumentTypeSyllabus      DocumentType = "syllabus"
	DocumentTypePastPaper     DocumentType = "pastpaper"
	DocumentTypeMarkingScheme DocumentType = "markingscheme"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeSyllabus, DocumentTypePastPaper, DocumentTypeMarkingScheme:
		return true
	}
	return false
}

// Subject is the exam subject a document or topic belongs to.
type Subject string

const (
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
)

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	switch s {
	case SubjectPhysics, SubjectChemistry, SubjectBiology:
		return true
	}
	return false
}

// ParseSubject normalizes user input into a Subject.
func ParseSubject(raw string) (Subject, bool) {
	s := Subject(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// ProcessingStatus is shared by documents and jobs.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Document is an uploaded syllabus, past paper or marking scheme.
type Document struct {
	ID               string           `json:"id"`
	Filename         string           `json:"filename"`
	Type             DocumentType     `json:"type"`
	Subject          *Subject         `json:"subject"`
	Content          *string          `json:"content"`
	ProcessingStatus ProcessingStatus `json:"processingStatus"`
	Metadata         DocumentMetadata `json:"metadata"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// DocumentMetadata is free-form upload information.
type DocumentMetadata struct {
	OriginalName string    `json:"originalName,omitempty"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
	SourcePath   string    `json:"sourcePath,omitempty"`
	PageCount    int       `json:"pageCount,omitempty"`
}

// Text returns the persisted content or "".
func (d *Document) Text() string {
	if d == nil || d.Content == nil {
		return ""
	}
	return *d.Content
}

// SubjectOrEmpty returns the subject or "".
func (d *Document) SubjectOrEmpty() Subject {
	if d == nil || d.Subject == nil {
		return ""
	}
	return *d.Subject
}

// DocumentFilter narrows List results. Zero values match everything.
type DocumentFilter struct {
	Type    DocumentType
	Subject Subject
}

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	Create(ctx context.Context, document *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*Document, error)
	UpdateContent(ctx context.Context, id string, content string) error
	UpdateStatus(ctx context.Context, id string, status ProcessingStatus) error
	UpdateMetadata(ctx context.Context, id string, metadata DocumentMetadata) error
}

// UploadedFile is a file already written to the upload directory.
type UploadedFile struct {
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

// DocumentService defines the use-case operations for documents.
type DocumentService interface {
	Upload(ctx context.Context, files []UploadedFile, docType DocumentType, subject *Subject) ([]*Document, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)
}
