package domain

import (
	"context"
	"time"
)

// Topic is one node of a subject's taxonomy. A main topic has a nil
// Subtopic; each subtopic is its own row sharing MainTopic and Subject.
type Topic struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	Subject     Subject   `json:"subject"`
	MainTopic   string    `json:"mainTopic"`
	Subtopic    *string   `json:"subtopic"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsMain reports whether the row represents a main topic.
func (t *Topic) IsMain() bool {
	return t.Subtopic == nil
}

// TopicOutline is the shape exchanged with the categorization service.
type TopicOutline struct {
	MainTopic   string   `json:"mainTopic"`
	Subtopics   []string `json:"subtopics"`
	Description string   `json:"description"`
}

// SubtopicDescription is the synthesized description of a subtopic row.
func SubtopicDescription(name string) string {
	return "Subtopic: " + name
}

// FlattenTaxonomy groups topic rows into outlines, preserving first-seen order.
// Duplicate rows collapse into one outline; duplicate subtopic names are kept once.
func FlattenTaxonomy(topics []*Topic) []TopicOutline {
	index := make(map[string]int)
	seenSub := make(map[string]map[string]bool)
	var out []TopicOutline

	for _, t := range topics {
		i, ok := index[t.MainTopic]
		if !ok {
			i = len(out)
			index[t.MainTopic] = i
			seenSub[t.MainTopic] = make(map[string]bool)
			out = append(out, TopicOutline{MainTopic: t.MainTopic, Subtopics: []string{}})
		}
		if t.Subtopic == nil {
			if out[i].Description == "" {
				out[i].Description = t.Description
			}
			continue
		}
		if !seenSub[t.MainTopic][*t.Subtopic] {
			seenSub[t.MainTopic][*t.Subtopic] = true
			out[i].Subtopics = append(out[i].Subtopics, *t.Subtopic)
		}
	}
	return out
}

// TopicRepository defines persistence operations for topics.
type TopicRepository interface {
	Create(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, id string) (*Topic, error)
	ListBySubject(ctx context.Context, subject Subject) ([]*Topic, error)
}
