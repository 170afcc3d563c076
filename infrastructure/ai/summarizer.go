package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"neurovault/application/ports"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const summarizerSystemPrompt = `You distill a cluster of related personal memory entries into one
durable long-term memory. You receive a JSON object with "topic", "category" and "entry_texts".

Respond with a single JSON object and nothing else:
{"summary": "...", "tags": ["..."]}

The summary is two to four sentences capturing what these entries collectively say,
written in the third person. Tags are short lowercase keywords.`

type summarizerResponse struct {
	Summary string   `json:"summary" validate:"required"`
	Tags    []string `json:"tags"`
}

// Summarizer implements ports.Summarizer against an OpenAI-compatible API
type Summarizer struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSummarizer creates a summarizer backed by an OpenAI-compatible endpoint
func NewSummarizer(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("summarizer API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &Summarizer{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		timeout:  timeout,
		validate: validator.New(),
		logger:   logger,
	}, nil
}

// Summarize asks the model to distill the cluster's texts
func (s *Summarizer) Summarize(ctx context.Context, req ports.SummaryRequest) (*ports.SummaryResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, rejected("empty completion")
	}

	var parsed summarizerResponse
	content := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		s.logger.Warn("Summarizer returned unparseable JSON", zap.Error(err))
		return nil, rejected("response is not valid JSON")
	}
	if err := s.validate.Struct(parsed); err != nil {
		s.logger.Warn("Summarizer response failed validation", zap.Error(err))
		return nil, rejected("response failed validation")
	}

	return &ports.SummaryResult{
		Summary: parsed.Summary,
		Tags:    parsed.Tags,
	}, nil
}
