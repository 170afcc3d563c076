package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"neurovault/application/ports"
	pkgerrors "neurovault/pkg/errors"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const classifierSystemPrompt = `You are the link-discovery engine of a personal memory vault.
You receive a JSON object with three arrays: "categories" (the allowed category buckets),
"delta_entries" (new or recently active entries to analyze) and "context_entries"
(established entries for reference only).

Respond with a single JSON object and nothing else:
{
  "topics": [{"topic": "...", "category": "...", "entry_ids": ["..."], "tags": ["..."], "importance": 1}],
  "synapses": [{"source_id": "...", "target_id": "...", "reason": "...", "strength": 0.5}]
}

Rules:
- Every topic's category must be one of the given category names.
- Every entry_id and source_id must come from delta_entries. target_id may also come from context_entries.
- importance is an integer from 1 to 3.
- Propose a synapse only when two entries are meaningfully associated; explain why in reason.`

// classifierResponse mirrors ports.ClassificationResult with boundary
// validation tags. The model is untrusted; anything that fails validation
// rejects the whole response.
type classifierResponse struct {
	Topics []struct {
		Topic      string   `json:"topic" validate:"required"`
		Category   string   `json:"category" validate:"required"`
		EntryIDs   []string `json:"entry_ids" validate:"required,min=1,dive,uuid"`
		Tags       []string `json:"tags"`
		Importance int      `json:"importance" validate:"min=0,max=3"`
	} `json:"topics" validate:"dive"`
	Synapses []struct {
		SourceID string  `json:"source_id" validate:"required,uuid"`
		TargetID string  `json:"target_id" validate:"required,uuid"`
		Reason   string  `json:"reason"`
		Strength float64 `json:"strength" validate:"min=0,max=1"`
	} `json:"synapses" validate:"dive"`
}

// defaultCallTimeout bounds a model call when config supplies no timeout.
// A hung endpoint must never stall the cycle until the lease expires.
const defaultCallTimeout = 60 * time.Second

// Classifier implements ports.Classifier against an OpenAI-compatible API
type Classifier struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewClassifier creates a classifier backed by an OpenAI-compatible endpoint.
// An empty baseURL uses the default OpenAI API.
func NewClassifier(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classifier API key is required")
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

	return &Classifier{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		timeout:  timeout,
		validate: validator.New(),
		logger:   logger,
	}, nil
}

// Classify sends the working set to the model and validates its proposals
func (c *Classifier) Classify(ctx context.Context, req ports.ClassificationRequest) (*ports.ClassificationResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode classification request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, rejected("empty completion")
	}

	var parsed classifierResponse
	content := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		c.logger.Warn("Classifier returned unparseable JSON", zap.Error(err))
		return nil, rejected("response is not valid JSON")
	}
	if err := c.validate.Struct(parsed); err != nil {
		c.logger.Warn("Classifier response failed validation", zap.Error(err))
		return nil, rejected("response failed validation")
	}

	allowed := make(map[string]bool, len(req.Categories))
	for _, category := range req.Categories {
		allowed[category.Name] = true
	}

	result := &ports.ClassificationResult{}
	for _, topic := range parsed.Topics {
		if len(allowed) > 0 && !allowed[topic.Category] {
			return nil, rejected("topic uses unknown category")
		}
		result.Topics = append(result.Topics, ports.TopicProposal{
			Topic:      topic.Topic,
			Category:   topic.Category,
			EntryIDs:   topic.EntryIDs,
			Tags:       topic.Tags,
			Importance: topic.Importance,
		})
	}
	for _, synapse := range parsed.Synapses {
		result.Synapses = append(result.Synapses, ports.SynapseProposal{
			SourceID: synapse.SourceID,
			TargetID: synapse.TargetID,
			Reason:   synapse.Reason,
			Strength: synapse.Strength,
		})
	}
	return result, nil
}

func rejected(reason string) error {
	return fmt.Errorf("%w: %s", pkgerrors.ErrClassifierRejected, reason)
}

// extractJSON strips markdown code fences some models wrap around JSON
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
