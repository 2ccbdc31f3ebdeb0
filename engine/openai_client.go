package engine

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is the slice of the OpenAI SDK the engines call. *openai.Client
// satisfies it; tests substitute a mock.
type OpenAIClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)

	ListAssistants(ctx context.Context, limit *int, order *string, after *string, before *string) (openai.AssistantsList, error)
	RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error)
}

var _ OpenAIClient = (*openai.Client)(nil)
