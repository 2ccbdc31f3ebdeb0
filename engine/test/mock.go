package enginetest

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/lumora-ai/chatcore/engine"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/mock"
)

type Engine struct {
	mock.Mock
}

func (e *Engine) Generate(ctx context.Context, req *engine.GenerateRequest) (*engine.GenerateResponse, error) {
	args := e.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.GenerateResponse), args.Error(1)
}

type OpenAIClient struct {
	mock.Mock
}

func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := c.Called(ctx, request)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func (c *OpenAIClient) CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error) {
	args := c.Called(ctx, request)
	return args.Get(0).(openai.Thread), args.Error(1)
}

func (c *OpenAIClient) DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error) {
	args := c.Called(ctx, threadID)
	return args.Get(0).(openai.ThreadDeleteResponse), args.Error(1)
}

func (c *OpenAIClient) CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error) {
	args := c.Called(ctx, threadID, request)
	return args.Get(0).(openai.Message), args.Error(1)
}

func (c *OpenAIClient) CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error) {
	args := c.Called(ctx, threadID, request)
	return args.Get(0).(openai.Run), args.Error(1)
}

func (c *OpenAIClient) RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error) {
	args := c.Called(ctx, threadID, runID)
	return args.Get(0).(openai.Run), args.Error(1)
}

func (c *OpenAIClient) ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error) {
	args := c.Called(ctx, threadID, limit, order, after, before, runID)
	return args.Get(0).(openai.MessagesList), args.Error(1)
}

func (c *OpenAIClient) ListAssistants(ctx context.Context, limit *int, order *string, after *string, before *string) (openai.AssistantsList, error) {
	args := c.Called(ctx, limit, order, after, before)
	return args.Get(0).(openai.AssistantsList), args.Error(1)
}

func (c *OpenAIClient) RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error) {
	args := c.Called(ctx, assistantID)
	return args.Get(0).(openai.Assistant), args.Error(1)
}

type AnthropicClient struct {
	mock.Mock
}

func (c *AnthropicClient) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	args := c.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Message), args.Error(1)
}

var (
	_ engine.Engine          = (*Engine)(nil)
	_ engine.OpenAIClient    = (*OpenAIClient)(nil)
	_ engine.AnthropicClient = (*AnthropicClient)(nil)
)
