package chattest

import (
	"context"

	"github.com/lumora-ai/chatcore/chat"
	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/stretchr/testify/mock"
)

type AssistantBackend struct {
	mock.Mock
}

func (b *AssistantBackend) Generate(ctx context.Context, req *engine.GenerateRequest) (*engine.GenerateResponse, error) {
	args := b.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.GenerateResponse), args.Error(1)
}

func (b *AssistantBackend) AssistantID() string {
	args := b.Called()
	return args.String(0)
}

func (b *AssistantBackend) CreateRemoteThread(ctx context.Context) (string, error) {
	args := b.Called(ctx)
	return args.String(0), args.Error(1)
}

func (b *AssistantBackend) DeleteRemoteThread(ctx context.Context, remoteThreadID string) error {
	args := b.Called(ctx, remoteThreadID)
	return args.Error(0)
}

type Service struct {
	mock.Mock
}

func (s *Service) CreateThread(ctx context.Context, owner string, req chat.CreateThreadRequest) (*entity.Thread, error) {
	args := s.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Thread), args.Error(1)
}

func (s *Service) GetThread(ctx context.Context, threadID uint, owner string) (*entity.Thread, error) {
	args := s.Called(ctx, threadID, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Thread), args.Error(1)
}

func (s *Service) ListThreads(ctx context.Context, owner string, cursor uint, limit uint) ([]entity.Thread, error) {
	args := s.Called(ctx, owner, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Thread), args.Error(1)
}

func (s *Service) DeactivateThread(ctx context.Context, threadID uint, owner string) error {
	args := s.Called(ctx, threadID, owner)
	return args.Error(0)
}

func (s *Service) DeleteThread(ctx context.Context, threadID uint, owner string) error {
	args := s.Called(ctx, threadID, owner)
	return args.Error(0)
}

func (s *Service) SubmitTurn(ctx context.Context, req *chat.TurnRequest) (*chat.TurnResponse, error) {
	args := s.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.TurnResponse), args.Error(1)
}

func (s *Service) GetContext(ctx context.Context, threadID uint, owner string) ([]entity.Message, error) {
	args := s.Called(ctx, threadID, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Message), args.Error(1)
}

func (s *Service) SendMessage(ctx context.Context, owner string, content string) (*chat.TurnResponse, error) {
	args := s.Called(ctx, owner, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.TurnResponse), args.Error(1)
}

func (s *Service) GetHistory(ctx context.Context, owner string) ([]entity.Message, error) {
	args := s.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Message), args.Error(1)
}

var (
	_ chat.AssistantBackend = (*AssistantBackend)(nil)
	_ chat.Service          = (*Service)(nil)
)
