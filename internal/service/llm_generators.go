package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"question-bank/internal/domain"

	vertex "cloud.google.com/go/vertexai/genai"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// LLM providers selectable through LLM_PROVIDER.
const (
	ProviderVertex    = "vertex"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

const (
	defaultVertexModel = "gemini-2.0-flash-001"
	defaultGeminiModel = "gemini-2.0-flash"
	defaultClaudeModel = "claude-sonnet-4-20250514"
	claudeMaxTokens    = 8192
	llmTemperature     = 0.1
)

// TextGenerator sends one system+user prompt to a model and returns its text.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// NewTextGenerator builds the configured provider, wrapped in a rate limiter
// when LLM_REQUESTS_PER_MINUTE is positive.
func NewTextGenerator(ctx context.Context, config domain.Config, logger domain.Logger) (TextGenerator, func() error, error) {
	var (
		gen     TextGenerator
		closeFn = func() error { return nil }
	)

	switch strings.ToLower(config.GetLLMProvider()) {
	case ProviderVertex, "":
		v, err := NewVertexGenerator(ctx, config.GetGCPProjectID(), config.GetGCPLocation(), config.GetLLMModel())
		if err != nil {
			return nil, nil, err
		}
		gen, closeFn = v, v.Close
	case ProviderGemini:
		g, err := NewGeminiGenerator(ctx, config.GetGeminiAPIKey(), config.GetLLMModel())
		if err != nil {
			return nil, nil, err
		}
		gen = g
	case ProviderAnthropic:
		c, err := NewClaudeGenerator(config.GetAnthropicAPIKey(), config.GetLLMModel())
		if err != nil {
			return nil, nil, err
		}
		gen = c
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider %q", config.GetLLMProvider())
	}

	if rpm := config.GetLLMRequestsPerMinute(); rpm > 0 {
		gen = NewRateLimitedGenerator(gen, rpm)
	}
	logger.Info("LLM provider configured", "provider", config.GetLLMProvider(), "model", config.GetLLMModel(), "rpm", config.GetLLMRequestsPerMinute())
	return gen, closeFn, nil
}

// VertexGenerator calls Gemini through Vertex AI.
type VertexGenerator struct {
	client *vertex.Client
	model  string
}

func NewVertexGenerator(ctx context.Context, projectID, location, model string) (*VertexGenerator, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex ai requires GCP_PROJECT_ID and GCP_LOCATION")
	}
	client, err := vertex.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	if model == "" {
		model = defaultVertexModel
	}
	return &VertexGenerator{client: client, model: model}, nil
}

func (g *VertexGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &vertex.Content{
		Parts: []vertex.Part{vertex.Text(system)},
	}
	model.GenerationConfig = vertex.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      vertex.Ptr[float32](llmTemperature),
	}

	resp, err := model.GenerateContent(ctx, vertex.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertex.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func (g *VertexGenerator) Close() error {
	return g.client.Close()
}

// GeminiGenerator calls the Gemini API with an API key.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](llmTemperature),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// ClaudeGenerator calls the Anthropic Messages API.
type ClaudeGenerator struct {
	client anthropic.Client
	model  string
}

func NewClaudeGenerator(apiKey, model string) (*ClaudeGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = defaultClaudeModel
	}
	return &ClaudeGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (g *ClaudeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   claudeMaxTokens,
		Temperature: anthropic.Float(llmTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{{Text: system}},
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return sb.String(), nil
}

// RateLimitedGenerator paces calls to the wrapped generator. Callers wait
// for a token; nothing is retried.
type RateLimitedGenerator struct {
	next    TextGenerator
	limiter *rate.Limiter
}

func NewRateLimitedGenerator(next TextGenerator, requestsPerMinute int) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (g *RateLimitedGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.next.Generate(ctx, system, prompt)
}
