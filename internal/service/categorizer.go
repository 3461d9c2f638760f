package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"question-bank/internal/domain"
)

const defaultMaxInputChars = 120000

const topicSystemPrompt = `You are an experienced examiner who builds topic taxonomies from exam syllabi.
Return JSON only, no markdown fences.`

const topicPromptTemplate = `Extract the topic structure of this %s syllabus.

Rules:
- List every main topic in syllabus order.
- For each main topic list its subtopics as short names.
- Give each main topic a one-sentence description.

Output format:
[
  {"mainTopic": "Kinematics", "subtopics": ["Equations of motion", "Projectile motion"], "description": "Motion of objects without reference to forces."}
]

Syllabus:
%s`

const questionSystemPrompt = `You are an experienced examiner who sorts past-paper questions into a fixed topic taxonomy.
Return JSON only, no markdown fences.`

const questionPromptTemplate = `Split this %s past paper into individual questions and categorize each one.

Rules:
- topicMatch must be copied exactly from a mainTopic in the taxonomy.
- subtopicMatch, when given, must be copied exactly from that topic's subtopics; omit it if none fits.
- difficulty is one of easy, medium, hard.
- marks is the total marks for the question if printed.
- hasVectorDiagram is true when the question relies on a diagram, graph or figure.

Taxonomy:
%s

Output format:
[
  {"questionText": "...", "questionNumber": "1(a)", "topicMatch": "Kinematics", "subtopicMatch": "Projectile motion", "difficulty": "medium", "marks": 4, "hasVectorDiagram": false}
]

Past paper:
%s`

// LLMCategorizer implements domain.Categorizer on top of a TextGenerator.
type LLMCategorizer struct {
	generator     TextGenerator
	maxInputChars int
	logger        domain.Logger
}

func NewLLMCategorizer(generator TextGenerator, maxInputChars int, logger domain.Logger) *LLMCategorizer {
	if maxInputChars <= 0 {
		maxInputChars = defaultMaxInputChars
	}
	return &LLMCategorizer{
		generator:     generator,
		maxInputChars: maxInputChars,
		logger:        logger,
	}
}

func (c *LLMCategorizer) ExtractTopics(ctx context.Context, text string, subject domain.Subject) ([]domain.TopicOutline, error) {
	prompt := fmt.Sprintf(topicPromptTemplate, subject, c.truncate(text))
	raw, err := c.generator.Generate(ctx, topicSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("topic extraction failed: %w", err)
	}

	outlines, err := parseTopicOutlines(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Topics extracted", "subject", subject, "topics", len(outlines))
	return outlines, nil
}

func (c *LLMCategorizer) CategorizeQuestions(ctx context.Context, text string, taxonomy []domain.TopicOutline, subject domain.Subject) ([]domain.CategorizedQuestion, error) {
	taxonomyJSON, err := json.MarshalIndent(taxonomy, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode taxonomy: %w", err)
	}

	prompt := fmt.Sprintf(questionPromptTemplate, subject, taxonomyJSON, c.truncate(text))
	raw, err := c.generator.Generate(ctx, questionSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("question categorization failed: %w", err)
	}

	questions, err := parseCategorizedQuestions(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Questions categorized", "subject", subject, "questions", len(questions))
	return questions, nil
}

func (c *LLMCategorizer) truncate(text string) string {
	if len(text) <= c.maxInputChars {
		return text
	}
	cut := c.maxInputChars
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	c.logger.Warn("Truncating model input", "chars", len(text), "limit", c.maxInputChars)
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// cleanJSONFences strips a surrounding markdown code fence.
func cleanJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	return strings.TrimSpace(s)
}

// decodeList accepts either a bare JSON array or an object wrapping it under key.
func decodeList[T any](raw, key string) ([]T, error) {
	body := cleanJSONFences(raw)

	var list []T
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("model response has no %q list", key)
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %q list: %w", key, err)
	}
	return list, nil
}

func parseTopicOutlines(raw string) ([]domain.TopicOutline, error) {
	list, err := decodeList[domain.TopicOutline](raw, "topics")
	if err != nil {
		return nil, err
	}

	out := make([]domain.TopicOutline, 0, len(list))
	for _, o := range list {
		o.MainTopic = strings.TrimSpace(o.MainTopic)
		if o.MainTopic == "" {
			continue
		}
		subs := make([]string, 0, len(o.Subtopics))
		for _, s := range o.Subtopics {
			if s = strings.TrimSpace(s); s != "" {
				subs = append(subs, s)
			}
		}
		o.Subtopics = subs
		out = append(out, o)
	}
	return out, nil
}

func parseCategorizedQuestions(raw string) ([]domain.CategorizedQuestion, error) {
	return decodeList[domain.CategorizedQuestion](raw, "questions")
}
