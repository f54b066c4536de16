package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider using testify/mock.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockConversationalProvider additionally hands out conversations.
type MockConversationalProvider struct {
	MockProvider
}

func (m *MockConversationalProvider) NewConversation(ctx context.Context, systemPrompt string) (Conversation, error) {
	args := m.Called(ctx, systemPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Conversation), args.Error(1)
}

// MockConversation is a mock implementation of Conversation.
type MockConversation struct {
	mock.Mock
}

func (m *MockConversation) Send(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}
