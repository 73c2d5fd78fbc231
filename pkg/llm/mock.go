package llm

import (
	"context"
)

// MockGateway is a configurable mock for testing profiling flows.
// Set CallFunc to control behavior in tests.
type MockGateway struct {
	// CallFunc is invoked for each Call. If nil, returns "{}" and nil error.
	CallFunc func(ctx context.Context, model string, messages []Message) (string, error)

	// Calls records every invocation for verification.
	Calls []MockCall
}

// MockCall records one Call invocation.
type MockCall struct {
	Model    string
	Messages []Message
}

// NewMockGateway creates a mock with sensible defaults.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Call implements Gateway.
func (m *MockGateway) Call(ctx context.Context, model string, messages []Message) (string, error) {
	m.Calls = append(m.Calls, MockCall{Model: model, Messages: messages})
	if m.CallFunc != nil {
		return m.CallFunc(ctx, model, messages)
	}
	return "{}", nil
}

// Reset clears recorded calls.
func (m *MockGateway) Reset() {
	m.Calls = nil
}
