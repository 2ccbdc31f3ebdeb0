package chat_test

import (
	"testing"

	"github.com/lumora-ai/chatcore/chat"
	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ContextTestSuite struct {
	ChatServiceTestSuite
}

func (s *ContextTestSuite) TestGetContextReturnsOrderedMessages() {
	th := s.bareThread("alice", entity.ProtocolCompletion)
	for _, m := range []struct {
		role    entity.Role
		content string
	}{
		{entity.RoleSystem, "You are a helpful AI assistant."},
		{entity.RoleUser, "Hi"},
		{entity.RoleAssistant, "Hello"},
	} {
		_, err := s.store.AddMessage(s.Context, th.ID, "alice", m.role, m.content, "")
		s.Require().NoError(err)
	}

	messages, err := s.service.GetContext(s.Context, th.ID, "alice")
	s.Require().NoError(err)
	s.Require().Len(messages, 3)
	s.Equal(entity.RoleSystem, messages[0].Role)
	s.Equal("Hi", messages[1].Content)
	s.Equal("Hello", messages[2].Content)
}

func (s *ContextTestSuite) TestGetContextForeignThreadIsNotFound() {
	th := s.bareThread("bob", entity.ProtocolCompletion)

	_, err := s.service.GetContext(s.Context, th.ID, "alice")
	s.Require().ErrorIs(err, errors.ErrNotFound)
}

// Reading the context is a pure query: two reads with no intervening writes
// return the same ordered sequence.
func (s *ContextTestSuite) TestGetContextRepeatedReadsAreIdentical() {
	th := s.bareThread("alice", entity.ProtocolCompletion)
	for _, content := range []string{"Hi", "Hello", "How are you?"} {
		_, err := s.store.AddMessage(s.Context, th.ID, "alice", entity.RoleUser, content, "")
		s.Require().NoError(err)
	}

	first, err := s.service.GetContext(s.Context, th.ID, "alice")
	s.Require().NoError(err)
	second, err := s.service.GetContext(s.Context, th.ID, "alice")
	s.Require().NoError(err)

	s.Require().Len(first, 3)
	s.Require().Len(second, 3)
	for i := range first {
		s.Equal(first[i].ID, second[i].ID)
		s.Equal(first[i].Content, second[i].Content)
	}
}

func (s *ContextTestSuite) TestGetContextEmptyThread() {
	th := s.bareThread("alice", entity.ProtocolCompletion)

	messages, err := s.service.GetContext(s.Context, th.ID, "alice")
	s.Require().NoError(err)
	s.Empty(messages)
}

// The history sent upstream keeps system messages but never the utterance
// being answered.
func (s *ContextTestSuite) TestTurnHistoryExcludesCurrentUtterance() {
	th := s.bareThread("alice", entity.ProtocolCompletion)
	_, err := s.store.AddMessage(s.Context, th.ID, "alice", entity.RoleSystem, "You are a helpful AI assistant.", "")
	s.Require().NoError(err)
	_, err = s.store.AddMessage(s.Context, th.ID, "alice", entity.RoleUser, "Hi", "")
	s.Require().NoError(err)
	_, err = s.store.AddMessage(s.Context, th.ID, "alice", entity.RoleAssistant, "Hello", "")
	s.Require().NoError(err)

	s.completion.On("Generate", mock.Anything, mock.MatchedBy(func(req *engine.GenerateRequest) bool {
		if len(req.History) != 3 {
			return false
		}
		for _, m := range req.History {
			if m.Content == "How are you?" {
				return false
			}
		}
		return req.History[0].Role == entity.RoleSystem && req.Input == "How are you?"
	})).Return(&engine.GenerateResponse{Content: "I'm fine"}, nil)

	_, err = s.service.SubmitTurn(s.Context, &chat.TurnRequest{
		ThreadID: th.ID,
		Owner:    "alice",
		Content:  "How are you?",
	})
	s.Require().NoError(err)
	s.completion.AssertExpectations(s.T())
}

func TestContext(t *testing.T) {
	suite.Run(t, new(ContextTestSuite))
}
