package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"question-bank/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, s)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.record("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.record("WARN: " + msg) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.record("ERROR: " + msg)
}

type MockDocumentRepository struct {
	mu    sync.Mutex
	docs  map[string]*domain.Document
	order []string
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{docs: make(map[string]*domain.Document)}
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	m.order = append(m.order, doc.ID)
	return nil
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockDocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Document
	for _, id := range m.order {
		d := m.docs[id]
		if filter.Type != "" && d.Type != filter.Type {
			continue
		}
		if filter.Subject != "" && d.SubjectOrEmpty() != filter.Subject {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockDocumentRepository) update(id string, fn func(*domain.Document)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	fn(d)
	return nil
}

func (m *MockDocumentRepository) UpdateContent(ctx context.Context, id string, content string) error {
	return m.update(id, func(d *domain.Document) { d.Content = &content })
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) error {
	return m.update(id, func(d *domain.Document) { d.ProcessingStatus = status })
}

func (m *MockDocumentRepository) UpdateMetadata(ctx context.Context, id string, metadata domain.DocumentMetadata) error {
	return m.update(id, func(d *domain.Document) { d.Metadata = metadata })
}

type MockTopicRepository struct {
	mu     sync.Mutex
	topics []*domain.Topic
	err    error
}

func NewMockTopicRepository() *MockTopicRepository {
	return &MockTopicRepository{}
}

func (m *MockTopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *topic
	m.topics = append(m.topics, &cp)
	return nil
}

func (m *MockTopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.topics {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrTopicNotFound
}

func (m *MockTopicRepository) ListBySubject(ctx context.Context, subject domain.Subject) ([]*domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Topic
	for _, t := range m.topics {
		if t.Subject == subject {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTopicRepository) all() []*domain.Topic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Topic(nil), m.topics...)
}

type MockQuestionRepository struct {
	mu        sync.Mutex
	questions []*domain.Question
}

func NewMockQuestionRepository() *MockQuestionRepository {
	return &MockQuestionRepository{}
}

func (m *MockQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.questions = append(m.questions, &cp)
	return nil
}

func (m *MockQuestionRepository) ListByTopic(ctx context.Context, topicID string) ([]*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Question
	for _, q := range m.questions {
		if q.TopicID == topicID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *MockQuestionRepository) all() []*domain.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Question(nil), m.questions...)
}

type MockJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*domain.ProcessingJob
	// history holds every stored version, in write order.
	history []domain.ProcessingJob
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{jobs: make(map[string]*domain.ProcessingJob)}
}

func (m *MockJobRepository) store(job *domain.ProcessingJob) {
	cp := *job
	m.jobs[job.ID] = &cp
	m.history = append(m.history, cp)
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(job)
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *domain.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	m.store(job)
	return nil
}

func (m *MockJobRepository) ListActive(ctx context.Context) ([]*domain.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ProcessingJob
	for _, j := range m.jobs {
		if !j.Status.Terminal() {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

// progressOf returns the recorded progress values for job id.
func (m *MockJobRepository) progressOf(id string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, j := range m.history {
		if j.ID == id {
			out = append(out, j.Progress)
		}
	}
	return out
}

type MockGeneratedPDFRepository struct {
	mu   sync.Mutex
	pdfs []*domain.GeneratedPDF
}

func NewMockGeneratedPDFRepository() *MockGeneratedPDFRepository {
	return &MockGeneratedPDFRepository{}
}

func (m *MockGeneratedPDFRepository) Create(ctx context.Context, pdf *domain.GeneratedPDF) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pdf
	m.pdfs = append(m.pdfs, &cp)
	return nil
}

func (m *MockGeneratedPDFRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedPDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pdfs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrGeneratedPDFNotFound
}

func (m *MockGeneratedPDFRepository) List(ctx context.Context) ([]*domain.GeneratedPDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.GeneratedPDF(nil), m.pdfs...), nil
}

type MockExtractor struct {
	mu       sync.Mutex
	contents map[string]*domain.ExtractedContent
	calls    []string
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{contents: make(map[string]*domain.ExtractedContent)}
}

func (m *MockExtractor) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	c, ok := m.contents[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return c, nil
}

type MockCategorizer struct {
	mu          sync.Mutex
	outlines    []domain.TopicOutline
	topicErr    error
	questions   map[string][]domain.CategorizedQuestion
	questionErr map[string]error
	topicInputs []string
}

func NewMockCategorizer() *MockCategorizer {
	return &MockCategorizer{
		questions:   make(map[string][]domain.CategorizedQuestion),
		questionErr: make(map[string]error),
	}
}

func (m *MockCategorizer) ExtractTopics(ctx context.Context, text string, subject domain.Subject) ([]domain.TopicOutline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicInputs = append(m.topicInputs, text)
	if m.topicErr != nil {
		return nil, m.topicErr
	}
	return m.outlines, nil
}

func (m *MockCategorizer) CategorizeQuestions(ctx context.Context, text string, taxonomy []domain.TopicOutline, subject domain.Subject) ([]domain.CategorizedQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.questionErr[text]; err != nil {
		return nil, err
	}
	return m.questions[text], nil
}

type MockRenderer struct {
	last domain.RenderInput
}

func (m *MockRenderer) Render(ctx context.Context, in domain.RenderInput) ([]byte, error) {
	m.last = in
	return []byte("%PDF-1.3 test"), nil
}

type MockArtifactStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{files: make(map[string][]byte)}
}

func (m *MockArtifactStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "mem/" + name
	m.files[path] = data
	return path, nil
}

func (m *MockArtifactStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, domain.ErrGeneratedPDFNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type MockGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func subjectPtr(s domain.Subject) *domain.Subject { return &s }
