package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"question-bank/internal/domain"
)

// Mock logger used by handler package tests.
type MockHandlerLogger struct {
	errors int
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})  {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})  {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {
	l.errors++
}

type MockDocumentService struct {
	documents  map[string]*domain.Document
	uploaded   []domain.UploadedFile
	uploadType domain.DocumentType
	subject    *domain.Subject
	lastFilter domain.DocumentFilter
	err        error
}

func NewMockDocumentService() *MockDocumentService {
	return &MockDocumentService{documents: make(map[string]*domain.Document)}
}

func (m *MockDocumentService) Upload(ctx context.Context, files []domain.UploadedFile, docType domain.DocumentType, subject *domain.Subject) ([]*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.uploaded = files
	m.uploadType = docType
	m.subject = subject
	docs := make([]*domain.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, &domain.Document{
			ID:               "doc-" + f.OriginalName,
			Filename:         f.OriginalName,
			Type:             docType,
			Subject:          subject,
			ProcessingStatus: domain.StatusPending,
		})
	}
	return docs, nil
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if doc, ok := m.documents[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	m.lastFilter = filter
	var out []*domain.Document
	for _, d := range m.documents {
		out = append(out, d)
	}
	return out, nil
}

type MockUploadSaver struct {
	saved map[string][]byte
}

func NewMockUploadSaver() *MockUploadSaver {
	return &MockUploadSaver{saved: make(map[string][]byte)}
}

func (m *MockUploadSaver) Save(originalName string, r io.Reader) (domain.UploadedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.UploadedFile{}, err
	}
	m.saved[originalName] = data
	return domain.UploadedFile{
		OriginalName: originalName,
		Path:         "/nonexistent/" + originalName,
		Size:         int64(len(data)),
		MimeType:     "application/pdf",
	}, nil
}

type MockProcessingService struct {
	jobs       map[string]*domain.ProcessingJob
	subject    domain.Subject
	topicID    string
	config     domain.PDFConfig
	startErr   error
	lastJobKey string
}

func NewMockProcessingService() *MockProcessingService {
	return &MockProcessingService{jobs: make(map[string]*domain.ProcessingJob)}
}

func (m *MockProcessingService) StartSyllabusAnalysis(ctx context.Context, subject domain.Subject) (string, error) {
	m.subject = subject
	m.lastJobKey = "syllabus"
	return "job-syllabus", m.startErr
}

func (m *MockProcessingService) StartPastPaperCategorization(ctx context.Context, subject domain.Subject) (string, error) {
	m.subject = subject
	m.lastJobKey = "pastpapers"
	return "job-pastpapers", m.startErr
}

func (m *MockProcessingService) StartPDFGeneration(ctx context.Context, topicID string, config domain.PDFConfig) (string, error) {
	m.topicID = topicID
	m.config = config
	m.lastJobKey = "pdf"
	return "job-pdf", m.startErr
}

func (m *MockProcessingService) GetJob(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockProcessingService) ListActiveJobs(ctx context.Context) ([]*domain.ProcessingJob, error) {
	var out []*domain.ProcessingJob
	for _, j := range m.jobs {
		if !j.Status.Terminal() {
			out = append(out, j)
		}
	}
	return out, nil
}

type MockQuestionBankService struct {
	topics    []*domain.Topic
	questions map[string][]*domain.Question
	pdfs      map[string]*domain.GeneratedPDF
	files     map[string][]byte
}

func NewMockQuestionBankService() *MockQuestionBankService {
	return &MockQuestionBankService{
		questions: make(map[string][]*domain.Question),
		pdfs:      make(map[string]*domain.GeneratedPDF),
		files:     make(map[string][]byte),
	}
}

func (m *MockQuestionBankService) ListTopics(ctx context.Context, subject domain.Subject) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, t := range m.topics {
		if t.Subject == subject {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockQuestionBankService) ListQuestions(ctx context.Context, topicID string) ([]*domain.Question, error) {
	qs, ok := m.questions[topicID]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	return qs, nil
}

func (m *MockQuestionBankService) ListGeneratedPDFs(ctx context.Context) ([]*domain.GeneratedPDF, error) {
	var out []*domain.GeneratedPDF
	for _, p := range m.pdfs {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockQuestionBankService) GetGeneratedPDF(ctx context.Context, id string) (*domain.GeneratedPDF, error) {
	if p, ok := m.pdfs[id]; ok {
		return p, nil
	}
	return nil, domain.ErrGeneratedPDFNotFound
}

func (m *MockQuestionBankService) OpenGeneratedPDF(ctx context.Context, pdf *domain.GeneratedPDF) (io.ReadCloser, error) {
	data, ok := m.files[pdf.FilePath]
	if !ok {
		return nil, domain.ErrGeneratedPDFNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type testServer struct {
	documents  *MockDocumentService
	uploads    *MockUploadSaver
	processing *MockProcessingService
	bank       *MockQuestionBankService
	logger     *MockHandlerLogger
	router     http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		documents:  NewMockDocumentService(),
		uploads:    NewMockUploadSaver(),
		processing: NewMockProcessingService(),
		bank:       NewMockQuestionBankService(),
		logger:     NewMockHandlerLogger(),
	}
	s.router = NewRouter(
		NewDocumentHandler(s.documents, s.uploads, 1<<20, s.logger),
		NewProcessingHandler(s.processing, s.logger),
		NewPDFHandler(s.bank, s.logger),
		[]string{"http://localhost:5173"},
		s.logger,
	)
	return s
}
