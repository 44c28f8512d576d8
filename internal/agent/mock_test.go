package agent

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockAIClient is a mock implementation of AIClient for testing.
type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	resp, ok := args.Get(0).(*ChatCompletionResponse)
	if !ok {
		return nil, args.Error(1)
	}
	return resp, args.Error(1)
}

func (m *mockAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	args := m.Called(ctx, req, callback)
	return args.Error(0)
}

func (m *mockAIClient) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// chatReply builds a single-choice completion response around content.
func chatReply(content string) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		Choices: []ChatChoice{
			{Message: ChatMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
	}
}
