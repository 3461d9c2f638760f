package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"question-bank/internal/domain"
)

// OrganizeQuestions sorts a copy of questions per config.SortBy and drops
// diagram-bearing questions when diagrams are disabled. Unknown sort keys
// keep the input order.
func OrganizeQuestions(questions []*domain.Question, config domain.PDFConfig) []*domain.Question {
	out := make([]*domain.Question, 0, len(questions))
	for _, q := range questions {
		if !config.IncludeVectorDiagrams && q.HasVectorDiagram {
			continue
		}
		out = append(out, q)
	}

	switch config.SortBy {
	case domain.SortByDifficulty:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Difficulty.Rank() < out[j].Difficulty.Rank()
		})
	case domain.SortByYearNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].YearValue() > out[j].YearValue()
		})
	case domain.SortByYearOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].YearValue() < out[j].YearValue()
		})
	}
	return out
}

// CountDiagrams counts questions that will render a diagram marker.
func CountDiagrams(questions []*domain.Question, config domain.PDFConfig) int {
	if !config.IncludeVectorDiagrams {
		return 0
	}
	n := 0
	for _, q := range questions {
		if q.HasVectorDiagram {
			n++
		}
	}
	return n
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// artifactFilename builds "<subject>_<topic>[_<subtopic>]_<timestamp>.pdf".
func artifactFilename(topic *domain.Topic, at time.Time) string {
	parts := []string{string(topic.Subject), slugify(topic.MainTopic)}
	if topic.Subtopic != nil {
		parts = append(parts, slugify(*topic.Subtopic))
	}
	name := strings.Join(parts, "_")
	if name == "_" || name == "" {
		name = "questions"
	}
	return fmt.Sprintf("%s_%s.pdf", name, at.UTC().Format("20060102T150405"))
}

func topicTitle(topic *domain.Topic) string {
	if topic.Subtopic != nil {
		return topic.MainTopic + ": " + *topic.Subtopic
	}
	return topic.MainTopic
}
