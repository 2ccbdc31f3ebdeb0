package engine_test

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/engine"
	enginetest "github.com/lumora-ai/chatcore/engine/test"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/mylog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CompletionEngineTestSuite struct {
	suite.Suite

	openai    *enginetest.OpenAIClient
	anthropic *enginetest.AnthropicClient
	engine    *engine.CompletionEngine
}

func (s *CompletionEngineTestSuite) SetupTest() {
	s.openai = &enginetest.OpenAIClient{}
	s.anthropic = &enginetest.AnthropicClient{}
	s.engine = engine.NewCompletionEngine(
		mylog.NewLogger("error", "default"),
		s.openai,
		s.anthropic,
		config.NewChatConfig(),
	)
}

func (s *CompletionEngineTestSuite) TestGenerateSendsHistoryThenInput() {
	s.openai.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-3.5-turbo" &&
			len(req.Messages) == 3 &&
			req.Messages[0].Role == "system" &&
			req.Messages[1].Content == "Hi" &&
			req.Messages[2].Role == "user" &&
			req.Messages[2].Content == "How are you?"
	})).Return(openai.ChatCompletionResponse{
		ID: "chatcmpl-1",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "I'm fine"}},
		},
	}, nil)

	resp, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		History: []engine.Message{
			{Role: entity.RoleSystem, Content: "You are a helpful AI assistant."},
			{Role: entity.RoleUser, Content: "Hi"},
		},
		Input: "How are you?",
	})
	s.Require().NoError(err)
	s.Equal("I'm fine", resp.Content)
	s.Equal("chatcmpl-1", resp.RemoteMessageID)
}

func (s *CompletionEngineTestSuite) TestGenerateValidatesBeforeRemoteCall() {
	cases := []struct {
		name string
		req  *engine.GenerateRequest
	}{
		{"empty input", &engine.GenerateRequest{Model: "gpt-3.5-turbo"}},
		{"missing model", &engine.GenerateRequest{Input: "Hi"}},
		{"unknown model", &engine.GenerateRequest{Model: "gpt-9000", Input: "Hi"}},
		{"temperature too high", &engine.GenerateRequest{Model: "gpt-3.5-turbo", Input: "Hi", Temperature: 2.5}},
		{"temperature negative", &engine.GenerateRequest{Model: "gpt-3.5-turbo", Input: "Hi", Temperature: -0.1}},
	}
	for _, c := range cases {
		_, err := s.engine.Generate(context.Background(), c.req)
		s.Require().ErrorIs(err, errors.ErrInvalidParams, c.name)
	}
	s.openai.AssertNotCalled(s.T(), "CreateChatCompletion", mock.Anything, mock.Anything)
	s.anthropic.AssertNotCalled(s.T(), "NewMessage", mock.Anything, mock.Anything)
}

func (s *CompletionEngineTestSuite) TestGenerateRemoteFailureIsUpstream() {
	s.openai.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("boom"))

	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Model: "gpt-3.5-turbo",
		Input: "Hi",
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
}

func (s *CompletionEngineTestSuite) TestGenerateDeadlineIsTimeout() {
	s.openai.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, context.DeadlineExceeded)

	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Model: "gpt-3.5-turbo",
		Input: "Hi",
	})
	s.Require().ErrorIs(err, errors.ErrTimeout)
}

func (s *CompletionEngineTestSuite) TestGenerateEmptyChoicesIsUpstream() {
	s.openai.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{ID: "chatcmpl-2"}, nil)

	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Model: "gpt-3.5-turbo",
		Input: "Hi",
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
	s.Contains(err.Error(), "no assistant response produced")
}

func (s *CompletionEngineTestSuite) TestGenerateRoutesAnthropicPrefix() {
	s.anthropic.On("NewMessage", mock.Anything, mock.MatchedBy(func(params anthropic.MessageNewParams) bool {
		return params.Model == "claude-3-5-sonnet-latest" &&
			len(params.System) == 1 &&
			len(params.Messages) == 3
	})).Return(&anthropic.Message{
		ID: "msg_a1",
		Content: []anthropic.ContentBlockUnion{
			{Type: "thinking", Thinking: "the user asked how I am"},
			{Type: "text", Text: "I'm fine"},
		},
	}, nil)

	resp, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Model: "anthropic/claude-3-5-sonnet-latest",
		History: []engine.Message{
			{Role: entity.RoleSystem, Content: "You are a helpful AI assistant."},
			{Role: entity.RoleUser, Content: "Hi"},
			{Role: entity.RoleAssistant, Content: "Hello"},
		},
		Input: "How are you?",
	})
	s.Require().NoError(err)
	s.Equal("I'm fine", resp.Content)
	s.Equal("msg_a1", resp.RemoteMessageID)
	s.openai.AssertNotCalled(s.T(), "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestCompletionEngine(t *testing.T) {
	suite.Run(t, new(CompletionEngineTestSuite))
}
