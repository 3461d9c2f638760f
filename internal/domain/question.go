package domain

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Difficulty of a question as judged by the categorization service.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank maps a difficulty to its sort ordinal. Unknown values rank as medium.
func (d Difficulty) Rank() int {
	switch Difficulty(strings.ToLower(string(d))) {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Paper sessions inferred from filenames.
const (
	SessionSummer = "summer"
	SessionWinter = "winter"
	SessionMarch  = "march"
)

// Question is a categorized past-paper question.
type Question struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"documentId"`
	TopicID          string     `json:"topicId"`
	QuestionText     string     `json:"questionText"`
	QuestionNumber   string     `json:"questionNumber"`
	PaperYear        string     `json:"paperYear"`
	PaperSession     string     `json:"paperSession"`
	HasVectorDiagram bool       `json:"hasVectorDiagram"`
	DiagramData      *string    `json:"diagramData"`
	Difficulty       Difficulty `json:"difficulty"`
	Marks            int        `json:"marks"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// YearValue parses PaperYear; missing or unparseable years are 0.
func (q *Question) YearValue() int {
	y, err := strconv.Atoi(strings.TrimSpace(q.PaperYear))
	if err != nil {
		return 0
	}
	return y
}

// CategorizedQuestion is one question returned by the categorization service.
type CategorizedQuestion struct {
	QuestionText     string     `json:"questionText"`
	QuestionNumber   string     `json:"questionNumber"`
	TopicMatch       string     `json:"topicMatch"`
	SubtopicMatch    *string    `json:"subtopicMatch,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	Marks            *int       `json:"marks,omitempty"`
	HasVectorDiagram bool       `json:"hasVectorDiagram"`
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// InferPaperYear returns the first four-digit run in a filename, or "".
func InferPaperYear(filename string) string {
	return yearPattern.FindString(filename)
}

// InferPaperSession maps "_s", "_w" and "_m" filename tokens to a session, or "".
func InferPaperSession(filename string) string {
	switch {
	case strings.Contains(filename, "_s"):
		return SessionSummer
	case strings.Contains(filename, "_w"):
		return SessionWinter
	case strings.Contains(filename, "_m"):
		return SessionMarch
	}
	return ""
}

// MatchTopic finds the topic row for a categorized question.
//
// With strictSubtopic, an absent subtopicMatch only matches the main-topic
// row (subtopic null). Without it, an absent subtopicMatch matches the first
// row carrying the main topic.
func MatchTopic(topics []*Topic, mainTopic string, subtopic *string, strictSubtopic bool) *Topic {
	for _, t := range topics {
		if t.MainTopic != mainTopic {
			continue
		}
		if subtopic != nil && *subtopic != "" {
			if t.Subtopic != nil && *t.Subtopic == *subtopic {
				return t
			}
			continue
		}
		if !strictSubtopic || t.Subtopic == nil {
			return t
		}
	}
	return nil
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	ListByTopic(ctx context.Context, topicID string) ([]*Question, error)
}
