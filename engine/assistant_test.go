package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/engine"
	enginetest "github.com/lumora-ai/chatcore/engine/test"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/mylog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AssistantEngineTestSuite struct {
	suite.Suite

	client *enginetest.OpenAIClient
	engine *engine.AssistantEngine
}

func (s *AssistantEngineTestSuite) SetupTest() {
	s.client = &enginetest.OpenAIClient{}

	chatConfig := config.NewChatConfig()
	chatConfig.RunPollInterval = time.Millisecond
	chatConfig.RunPollTimeout = time.Second

	s.engine = engine.NewAssistantEngine(
		mylog.NewLogger("error", "default"),
		s.client,
		&config.OpenAIConfig{AssistantID: "asst_1"},
		chatConfig,
	)
}

func assistantText(value string) []openai.MessageContent {
	return []openai.MessageContent{
		{Type: "text", Text: &openai.MessageText{Value: value}},
	}
}

func (s *AssistantEngineTestSuite) TestGenerateDrivesRunToCompletion() {
	s.client.On("CreateMessage", mock.Anything, "thread_r", mock.MatchedBy(func(req openai.MessageRequest) bool {
		return req.Role == "user" && req.Content == "How are you?"
	})).Return(openai.Message{ID: "msg_u"}, nil)

	s.client.On("CreateRun", mock.Anything, "thread_r", mock.MatchedBy(func(req openai.RunRequest) bool {
		return req.AssistantID == "asst_1"
	})).Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusQueued}, nil)

	s.client.On("RetrieveRun", mock.Anything, "thread_r", "run_1").
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusInProgress}, nil).Once()
	s.client.On("RetrieveRun", mock.Anything, "thread_r", "run_1").
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusCompleted}, nil).Once()

	s.client.On("ListMessage", mock.Anything, "thread_r", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(openai.MessagesList{Messages: []openai.Message{
			{ID: "msg_a", Role: "assistant", Content: assistantText("I'm fine")},
			{ID: "msg_u", Role: "user", Content: assistantText("How are you?")},
		}}, nil)

	resp, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Input:          "How are you?",
		RemoteThreadID: "thread_r",
	})
	s.Require().NoError(err)
	s.Equal("I'm fine", resp.Content)
	s.Equal("msg_a", resp.RemoteMessageID)
	s.Equal("run_1", resp.RunID)
	s.client.AssertExpectations(s.T())
}

func (s *AssistantEngineTestSuite) TestGenerateExpiredRunIsUpstream() {
	s.client.On("CreateMessage", mock.Anything, "thread_r", mock.Anything).
		Return(openai.Message{}, nil)
	s.client.On("CreateRun", mock.Anything, "thread_r", mock.Anything).
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusQueued}, nil)
	s.client.On("RetrieveRun", mock.Anything, "thread_r", "run_1").
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusExpired}, nil)

	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Input:          "Hi",
		RemoteThreadID: "thread_r",
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
	s.Contains(err.Error(), "expired")
	s.client.AssertNotCalled(s.T(), "ListMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AssistantEngineTestSuite) TestGenerateNoAssistantReplyIsUpstream() {
	s.client.On("CreateMessage", mock.Anything, "thread_r", mock.Anything).
		Return(openai.Message{}, nil)
	s.client.On("CreateRun", mock.Anything, "thread_r", mock.Anything).
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusCompleted}, nil)
	s.client.On("ListMessage", mock.Anything, "thread_r", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(openai.MessagesList{Messages: []openai.Message{
			{ID: "msg_u", Role: "user", Content: assistantText("Hi")},
		}}, nil)

	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Input:          "Hi",
		RemoteThreadID: "thread_r",
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
	s.Contains(err.Error(), "no assistant response produced")
}

func (s *AssistantEngineTestSuite) TestGenerateValidation() {
	_, err := s.engine.Generate(context.Background(), &engine.GenerateRequest{RemoteThreadID: "thread_r"})
	s.Require().ErrorIs(err, errors.ErrInvalidParams)

	_, err = s.engine.Generate(context.Background(), &engine.GenerateRequest{Input: "Hi"})
	s.Require().ErrorIs(err, errors.ErrInvalidParams)

	_, err = s.engine.Generate(context.Background(), &engine.GenerateRequest{
		Input:          "Hi",
		RemoteThreadID: "thread_r",
		Model:          "anthropic/claude-3-5-sonnet-latest",
	})
	s.Require().ErrorIs(err, errors.ErrInvalidParams)

	s.client.AssertNotCalled(s.T(), "CreateMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AssistantEngineTestSuite) TestRemoteThreadLifecycle() {
	s.client.On("CreateThread", mock.Anything, mock.Anything).
		Return(openai.Thread{ID: "thread_r"}, nil)
	s.client.On("DeleteThread", mock.Anything, "thread_r").
		Return(openai.ThreadDeleteResponse{Deleted: true}, nil)

	id, err := s.engine.CreateRemoteThread(context.Background())
	s.Require().NoError(err)
	s.Equal("thread_r", id)

	s.Require().NoError(s.engine.DeleteRemoteThread(context.Background(), "thread_r"))
}

func (s *AssistantEngineTestSuite) TestListAssistants() {
	name := "Helper"
	instructions := "Be helpful."
	s.client.On("ListAssistants", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(openai.AssistantsList{Assistants: []openai.Assistant{
			{ID: "asst_1", Name: &name, Instructions: &instructions, Model: "gpt-4o"},
		}}, nil)

	infos, err := s.engine.ListAssistants(context.Background())
	s.Require().NoError(err)
	s.Require().Len(infos, 1)
	s.Equal("asst_1", infos[0].ID)
	s.Equal("Helper", infos[0].Name)
	s.Equal("gpt-4o", infos[0].Model)
}

type RunPollerTestSuite struct {
	suite.Suite

	client *enginetest.OpenAIClient
}

func (s *RunPollerTestSuite) SetupTest() {
	s.client = &enginetest.OpenAIClient{}
}

func (s *RunPollerTestSuite) poller(maxPolls int) *engine.RunPoller {
	chatConfig := config.NewChatConfig()
	chatConfig.RunPollInterval = time.Millisecond
	chatConfig.RunPollTimeout = time.Second
	chatConfig.RunMaxPolls = maxPolls
	return engine.NewRunPoller(s.client, chatConfig)
}

func (s *RunPollerTestSuite) TestWaitReturnsImmediatelyCompletedRun() {
	run, err := s.poller(5).Wait(context.Background(), openai.Run{
		ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusCompleted,
	})
	s.Require().NoError(err)
	s.Equal(openai.RunStatusCompleted, run.Status)
	s.client.AssertNotCalled(s.T(), "RetrieveRun", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RunPollerTestSuite) TestWaitFailedRunIsUpstream() {
	_, err := s.poller(5).Wait(context.Background(), openai.Run{
		ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusFailed,
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
	s.Contains(err.Error(), "failed")
}

func (s *RunPollerTestSuite) TestWaitExhaustedPollsIsTimeout() {
	s.client.On("RetrieveRun", mock.Anything, "thread_r", "run_1").
		Return(openai.Run{ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusInProgress}, nil)

	_, err := s.poller(3).Wait(context.Background(), openai.Run{
		ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusQueued,
	})
	s.Require().ErrorIs(err, errors.ErrTimeout)
}

func (s *RunPollerTestSuite) TestWaitRetrieveFailureIsUpstream() {
	s.client.On("RetrieveRun", mock.Anything, "thread_r", "run_1").
		Return(openai.Run{}, errors.New("boom"))

	_, err := s.poller(5).Wait(context.Background(), openai.Run{
		ID: "run_1", ThreadID: "thread_r", Status: openai.RunStatusQueued,
	})
	s.Require().ErrorIs(err, errors.ErrUpstream)
}

func TestAssistantEngine(t *testing.T) {
	suite.Run(t, new(AssistantEngineTestSuite))
}

func TestRunPoller(t *testing.T) {
	suite.Run(t, new(RunPollerTestSuite))
}
