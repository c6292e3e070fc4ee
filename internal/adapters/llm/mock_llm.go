package llm

import (
	"context"
	"fmt"

	"github.com/lacura/lacura-api/internal/domain"
)

// MockLLM is the dev/test backend: it echoes the latest user message so
// conversations stay inspectable without any remote calls.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return fmt.Sprintf("Got it, you said %q. What date and time would work best for you?", messages[i].Content), nil
		}
	}
	return "Hi! I can help you schedule, cancel, or reschedule appointments. What would you like to do?", nil
}
