package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIGateway talks to any OpenAI-compatible chat completion endpoint.
type OpenAIGateway struct {
	client   *openai.Client
	endpoint string
	logger   *zap.Logger
}

// GatewayConfig holds connection settings shared by gateway implementations.
type GatewayConfig struct {
	Endpoint string // Base URL, e.g. "https://api.openai.com/v1"
	APIKey   string // Optional for local endpoints
}

// NewOpenAIGateway creates a gateway backed by go-openai.
func NewOpenAIGateway(cfg *GatewayConfig, logger *zap.Logger) (*OpenAIGateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIGateway{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		logger:   logger.Named("llm"),
	}, nil
}

// Call implements Gateway.
func (g *OpenAIGateway) Call(ctx context.Context, model string, messages []Message) (string, error) {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, toOpenAIMessage(m))
	}

	g.logger.Debug("LLM request",
		zap.String("model", model),
		zap.Int("messages", len(messages)))

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: converted,
	})
	if err != nil {
		g.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	g.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessage converts a Message. Single text parts use the plain Content
// field; anything with an image goes through MultiContent.
func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if m.Role == RoleSystem {
		role = openai.ChatMessageRoleSystem
	}

	if len(m.Parts) == 1 && m.Parts[0].Type == ContentText {
		return openai.ChatCompletionMessage{Role: role, Content: m.Parts[0].Text}
	}

	parts := make([]openai.ChatMessagePart, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Type {
		case ContentText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case ContentImage:
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: p.ImageURL},
			})
		}
	}
	return openai.ChatCompletionMessage{Role: role, MultiContent: parts}
}
