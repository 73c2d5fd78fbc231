package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicGateway talks to the Anthropic Messages API.
type AnthropicGateway struct {
	client *anthropic.Client
	logger *zap.Logger
}

// anthropicMaxTokens bounds completion length for profiling responses.
const anthropicMaxTokens = 4096

// NewAnthropicGateway creates a gateway backed by go-anthropic.
func NewAnthropicGateway(cfg *GatewayConfig, logger *zap.Logger) (*AnthropicGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	opts := []anthropic.ClientOption{}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	return &AnthropicGateway{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		logger: logger.Named("llm"),
	}, nil
}

// Call implements Gateway. System messages map to the request-level system
// prompt; user messages become message content blocks.
func (g *AnthropicGateway) Call(ctx context.Context, model string, messages []Message) (string, error) {
	var system string
	converted := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system += m.joinedText()
			continue
		}
		converted = append(converted, toAnthropicMessage(m))
	}

	start := time.Now()

	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		System:    system,
		Messages:  converted,
		MaxTokens: anthropicMaxTokens,
	})
	if err != nil {
		g.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("create messages: %w", err)
	}

	var out strings.Builder
	for _, c := range resp.Content {
		out.WriteString(c.GetText())
	}

	g.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return out.String(), nil
}

func toAnthropicMessage(m Message) anthropic.Message {
	content := make([]anthropic.MessageContent, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Type {
		case ContentText:
			content = append(content, anthropic.NewTextMessageContent(p.Text))
		case ContentImage:
			content = append(content, anthropic.NewImageMessageContent(imageSource(p.ImageURL)))
		}
	}
	return anthropic.Message{Role: anthropic.RoleUser, Content: content}
}

// imageSource converts an image reference to the Messages API shape: data
// URLs become inline base64 blocks, anything else passes through by URL.
func imageSource(u string) anthropic.MessageContentSource {
	if rest, ok := strings.CutPrefix(u, "data:"); ok {
		if mediaType, data, found := strings.Cut(rest, ";base64,"); found {
			return anthropic.MessageContentSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      data,
			}
		}
	}
	return anthropic.MessageContentSource{Type: "url", Url: u}
}
