package sqlstore

import (
	"encoding/json"
	"time"

	"question-bank/internal/domain"

	"gorm.io/datatypes"
)

type documentModel struct {
	ID               string  `gorm:"primaryKey;size:36"`
	Filename         string  `gorm:"not null"`
	Type             string  `gorm:"not null;index"`
	Subject          *string `gorm:"index"`
	Content          *string `gorm:"type:text"`
	ProcessingStatus string  `gorm:"not null;default:'pending'"`
	Metadata         datatypes.JSON
	CreatedAt        time.Time `gorm:"index"`
}

func (documentModel) TableName() string { return "documents" }

type topicModel struct {
	ID          string  `gorm:"primaryKey;size:36"`
	DocumentID  string  `gorm:"index"`
	Subject     string  `gorm:"not null;index"`
	MainTopic   string  `gorm:"not null"`
	Subtopic    *string
	Description string  `gorm:"type:text"`
	CreatedAt   time.Time
}

func (topicModel) TableName() string { return "topics" }

type questionModel struct {
	ID               string `gorm:"primaryKey;size:36"`
	DocumentID       string `gorm:"index"`
	TopicID          string `gorm:"not null;index"`
	QuestionText     string `gorm:"type:text"`
	QuestionNumber   string
	PaperYear        string
	PaperSession     string
	HasVectorDiagram bool
	DiagramData      *string `gorm:"type:text"`
	Difficulty       string
	Marks            int
	CreatedAt        time.Time
}

func (questionModel) TableName() string { return "questions" }

type jobModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	Type          string `gorm:"not null"`
	Status        string `gorm:"not null;index"`
	Progress      int
	StatusMessage string
	DocumentIDs   datatypes.JSON
	Result        datatypes.JSON
	Error         *string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (jobModel) TableName() string { return "processing_jobs" }

type generatedPDFModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	Filename      string `gorm:"not null"`
	TopicID       string `gorm:"index"`
	Subject       string
	MainTopic     string
	Subtopic      *string
	QuestionCount int
	DiagramCount  int
	FileSize      int64
	FilePath      string
	Configuration datatypes.JSON
	CreatedAt     time.Time
}

func (generatedPDFModel) TableName() string { return "generated_pdfs" }

// allModels is the AutoMigrate set.
func allModels() []interface{} {
	return []interface{}{
		&documentModel{},
		&topicModel{},
		&questionModel{},
		&jobModel{},
		&generatedPDFModel{},
	}
}

// jsonColumn marshals v, falling back to JSON null so the column is never SQL NULL.
func jsonColumn(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil || len(b) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func rawColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func subjectPtr(s *domain.Subject) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func toDocumentModel(d *domain.Document) *documentModel {
	return &documentModel{
		ID:               d.ID,
		Filename:         d.Filename,
		Type:             string(d.Type),
		Subject:          subjectPtr(d.Subject),
		Content:          d.Content,
		ProcessingStatus: string(d.ProcessingStatus),
		Metadata:         jsonColumn(d.Metadata),
		CreatedAt:        d.CreatedAt,
	}
}

func (m *documentModel) toDomain() *domain.Document {
	d := &domain.Document{
		ID:               m.ID,
		Filename:         m.Filename,
		Type:             domain.DocumentType(m.Type),
		Content:          m.Content,
		ProcessingStatus: domain.ProcessingStatus(m.ProcessingStatus),
		CreatedAt:        m.CreatedAt,
	}
	if m.Subject != nil {
		s := domain.Subject(*m.Subject)
		d.Subject = &s
	}
	_ = json.Unmarshal(m.Metadata, &d.Metadata)
	return d
}

func toTopicModel(t *domain.Topic) *topicModel {
	return &topicModel{
		ID:          t.ID,
		DocumentID:  t.DocumentID,
		Subject:     string(t.Subject),
		MainTopic:   t.MainTopic,
		Subtopic:    t.Subtopic,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *topicModel) toDomain() *domain.Topic {
	return &domain.Topic{
		ID:          m.ID,
		DocumentID:  m.DocumentID,
		Subject:     domain.Subject(m.Subject),
		MainTopic:   m.MainTopic,
		Subtopic:    m.Subtopic,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

func toQuestionModel(q *domain.Question) *questionModel {
	return &questionModel{
		ID:               q.ID,
		DocumentID:       q.DocumentID,
		TopicID:          q.TopicID,
		QuestionText:     q.QuestionText,
		QuestionNumber:   q.QuestionNumber,
		PaperYear:        q.PaperYear,
		PaperSession:     q.PaperSession,
		HasVectorDiagram: q.HasVectorDiagram,
		DiagramData:      q.DiagramData,
		Difficulty:       string(q.Difficulty),
		Marks:            q.Marks,
		CreatedAt:        q.CreatedAt,
	}
}

func (m *questionModel) toDomain() *domain.Question {
	return &domain.Question{
		ID:               m.ID,
		DocumentID:       m.DocumentID,
		TopicID:          m.TopicID,
		QuestionText:     m.QuestionText,
		QuestionNumber:   m.QuestionNumber,
		PaperYear:        m.PaperYear,
		PaperSession:     m.PaperSession,
		HasVectorDiagram: m.HasVectorDiagram,
		DiagramData:      m.DiagramData,
		Difficulty:       domain.Difficulty(m.Difficulty),
		Marks:            m.Marks,
		CreatedAt:        m.CreatedAt,
	}
}

func toJobModel(j *domain.ProcessingJob) *jobModel {
	ids := j.DocumentIDs
	if ids == nil {
		ids = []string{}
	}
	return &jobModel{
		ID:            j.ID,
		Type:          string(j.Type),
		Status:        string(j.Status),
		Progress:      j.Progress,
		StatusMessage: j.StatusMessage,
		DocumentIDs:   jsonColumn(ids),
		Result:        rawColumn(j.Result),
		Error:         j.Error,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func (m *jobModel) toDomain() *domain.ProcessingJob {
	j := &domain.ProcessingJob{
		ID:            m.ID,
		Type:          domain.JobType(m.Type),
		Status:        domain.ProcessingStatus(m.Status),
		Progress:      m.Progress,
		StatusMessage: m.StatusMessage,
		Error:         m.Error,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	_ = json.Unmarshal(m.DocumentIDs, &j.DocumentIDs)
	if s := string(m.Result); s != "" && s != "null" {
		j.Result = json.RawMessage(m.Result)
	}
	return j
}

func toGeneratedPDFModel(p *domain.GeneratedPDF) *generatedPDFModel {
	return &generatedPDFModel{
		ID:            p.ID,
		Filename:      p.Filename,
		TopicID:       p.TopicID,
		Subject:       string(p.Subject),
		MainTopic:     p.MainTopic,
		Subtopic:      p.Subtopic,
		QuestionCount: p.QuestionCount,
		DiagramCount:  p.DiagramCount,
		FileSize:      p.FileSize,
		FilePath:      p.FilePath,
		Configuration: jsonColumn(p.Configuration),
		CreatedAt:     p.CreatedAt,
	}
}

func (m *generatedPDFModel) toDomain() *domain.GeneratedPDF {
	p := &domain.GeneratedPDF{
		ID:            m.ID,
		Filename:      m.Filename,
		TopicID:       m.TopicID,
		Subject:       domain.Subject(m.Subject),
		MainTopic:     m.MainTopic,
		Subtopic:      m.Subtopic,
		QuestionCount: m.QuestionCount,
		DiagramCount:  m.DiagramCount,
		FileSize:      m.FileSize,
		FilePath:      m.FilePath,
		CreatedAt:     m.CreatedAt,
	}
	_ = json.Unmarshal(m.Configuration, &p.Configuration)
	return p
}
