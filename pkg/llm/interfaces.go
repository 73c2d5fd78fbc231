// Package llm provides the gateway used for profile enrichment calls, with
// OpenAI-compatible and Anthropic implementations.
package llm

import "context"

// Gateway is the LLM call surface consumed by the profiler. The returned text
// may be JSON wrapped in markdown code fences; callers unwrap it with
// StripFences before parsing. Implementations perform no retries of their
// own - the retry policy lives at the call site.
type Gateway interface {
	// Call sends messages to the named model and returns the raw text response.
	Call(ctx context.Context, model string, messages []Message) (string, error)
}

// Ensure implementations satisfy Gateway at compile time.
var (
	_ Gateway = (*OpenAIGateway)(nil)
	_ Gateway = (*AnthropicGateway)(nil)
	_ Gateway = (*MockGateway)(nil)
)
