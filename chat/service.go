package chat

import (
	"context"
	"fmt"

	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/mylog"
	"github.com/lumora-ai/chatcore/thread"
)

type (
	// Service is the turn orchestrator. A turn persists the user utterance
	// before any remote call, so a gateway failure never loses the user's
	// input; callers detect an unanswered turn by a trailing user message
	// with no assistant message after it.
	Service interface {
		CreateThread(ctx context.Context, owner string, req CreateThreadRequest) (*entity.Thread, error)
		GetThread(ctx context.Context, threadID uint, owner string) (*entity.Thread, error)
		ListThreads(ctx context.Context, owner string, cursor uint, limit uint) ([]entity.Thread, error)
		DeactivateThread(ctx context.Context, threadID uint, owner string) error
		DeleteThread(ctx context.Context, threadID uint, owner string) error

		SubmitTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error)
		GetContext(ctx context.Context, threadID uint, owner string) ([]entity.Message, error)

		// Legacy single-turn chat: flat per-owner history, no thread, only
		// the current utterance is sent as context.
		SendMessage(ctx context.Context, owner string, content string) (*TurnResponse, error)
		GetHistory(ctx context.Context, owner string) ([]entity.Message, error)
	}

	// AssistantBackend is the stateful gateway plus the remote thread
	// lifecycle the orchestrator drives at thread creation and deletion.
	AssistantBackend interface {
		engine.Engine
		AssistantID() string
		CreateRemoteThread(ctx context.Context) (string, error)
		DeleteRemoteThread(ctx context.Context, remoteThreadID string) error
	}

	CreateThreadRequest struct {
		Title     string
		Protocol  entity.Protocol
		ModelName string
		Metadata  map[string]any
	}

	TurnRequest struct {
		ThreadID uint
		Owner    string
		Content  string

		// Model and Temperature override the thread's settings for this turn.
		Model       string
		Temperature *float32
	}

	TurnResponse struct {
		ThreadID uint
		Message  *entity.Message
	}

	service struct {
		logger     *mylog.Logger
		store      thread.Manager
		completion engine.Engine
		assistant  AssistantBackend
		chatConfig *config.ChatConfig
	}
)

func NewService(
	logger *mylog.Logger,
	store thread.Manager,
	completion engine.Engine,
	assistant AssistantBackend,
	chatConfig *config.ChatConfig,
) Service {
	return &service{
		logger:     logger,
		store:      store,
		completion: completion,
		assistant:  assistant,
		chatConfig: chatConfig,
	}
}

func (s *service) CreateThread(ctx context.Context, owner string, req CreateThreadRequest) (*entity.Thread, error) {
	if req.Title == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "title is required")
	}

	protocol := req.Protocol
	if protocol == "" {
		protocol = entity.ProtocolCompletion
	}

	modelName := req.ModelName
	if modelName == "" {
		modelName = s.chatConfig.DefaultModel
	}

	params := thread.CreateThreadParams{
		Title:     req.Title,
		Protocol:  protocol,
		ModelName: modelName,
		MemoryKey: fmt.Sprintf("memory_%s_%s", owner, req.Title),
		Metadata:  req.Metadata,
	}

	switch protocol {
	case entity.ProtocolCompletion:
	case entity.ProtocolAssistant:
		// The provider-side thread is provisioned once, here, not per turn.
		remoteThreadID, err := s.assistant.CreateRemoteThread(ctx)
		if err != nil {
			return nil, err
		}
		params.RemoteThreadID = remoteThreadID
		params.AssistantID = s.assistant.AssistantID()
	default:
		return nil, errors.Wrapf(errors.ErrInvalidParams, "unknown protocol %q", protocol)
	}

	th, err := s.store.CreateThread(ctx, owner, params)
	if err != nil {
		if params.RemoteThreadID != "" {
			// Best effort; the provider-side thread must not be left orphaned.
			if derr := s.assistant.DeleteRemoteThread(ctx, params.RemoteThreadID); derr != nil {
				s.logger.Warn("failed to delete remote thread", "remote_thread_id", params.RemoteThreadID, "error", derr)
			}
		}
		return nil, err
	}

	if protocol == entity.ProtocolCompletion {
		if _, err := s.store.AddMessage(ctx, th.ID, owner, entity.RoleSystem, "You are a helpful AI assistant.", ""); err != nil {
			return nil, err
		}
	}

	s.logger.Info("thread created", "thread_id", th.ID, "owner", owner, "protocol", protocol)

	return th, nil
}

func (s *service) GetThread(ctx context.Context, threadID uint, owner string) (*entity.Thread, error) {
	return s.store.GetThread(ctx, threadID, owner)
}

func (s *service) ListThreads(ctx context.Context, owner string, cursor uint, limit uint) ([]entity.Thread, error) {
	return s.store.GetThreads(ctx, owner, cursor, limit)
}

func (s *service) DeactivateThread(ctx context.Context, threadID uint, owner string) error {
	return s.store.DeactivateThread(ctx, threadID, owner)
}

func (s *service) DeleteThread(ctx context.Context, threadID uint, owner string) error {
	th, err := s.store.GetThread(ctx, threadID, owner)
	if err != nil {
		return err
	}

	if th.Protocol == entity.ProtocolAssistant && th.RemoteThreadID != "" {
		if err := s.assistant.DeleteRemoteThread(ctx, th.RemoteThreadID); err != nil {
			// Local deletion is the user's intent; an already-gone remote
			// thread must not block it.
			s.logger.Warn("failed to delete remote thread", "thread_id", th.ID, "remote_thread_id", th.RemoteThreadID, "error", err)
		}
	}

	return s.store.DeleteThread(ctx, threadID, owner)
}

func (s *service) SubmitTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if req.Content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "content is required")
	}

	th, err := s.store.GetThread(ctx, req.ThreadID, req.Owner)
	if err != nil {
		return nil, err
	}
	if !th.IsActive {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread %d not found", req.ThreadID)
	}

	// Durable and unconditional: the user's input survives any failure below.
	userMsg, err := s.store.AddMessage(ctx, th.ID, req.Owner, entity.RoleUser, req.Content, "")
	if err != nil {
		return nil, err
	}

	history, err := s.buildContext(ctx, th.ID, userMsg.ID)
	if err != nil {
		return nil, err
	}

	genReq := &engine.GenerateRequest{
		Model:          req.Model,
		Temperature:    s.chatConfig.DefaultTemperature,
		History:        history,
		Input:          req.Content,
		RemoteThreadID: th.RemoteThreadID,
	}
	if genReq.Model == "" {
		genReq.Model = th.ModelName
	}
	if genReq.Model == "" {
		genReq.Model = s.chatConfig.DefaultModel
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	}

	var eng engine.Engine
	switch th.Protocol {
	case entity.ProtocolAssistant:
		eng = s.assistant
	default:
		eng = s.completion
	}

	resp, err := eng.Generate(ctx, genReq)
	if err != nil {
		// The user message stays; no assistant message is written.
		return nil, err
	}

	assistantMsg, err := s.store.AddMessage(ctx, th.ID, req.Owner, entity.RoleAssistant, resp.Content, resp.RemoteMessageID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("turn completed", "thread_id", th.ID, "run_id", resp.RunID, "message_id", assistantMsg.ID)

	return &TurnResponse{
		ThreadID: th.ID,
		Message:  assistantMsg,
	}, nil
}

func (s *service) SendMessage(ctx context.Context, owner string, content string) (*TurnResponse, error) {
	if content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "content is required")
	}

	if _, err := s.store.AddHistory(ctx, owner, entity.RoleUser, content); err != nil {
		return nil, err
	}

	// Legacy mode: the context is the current utterance alone.
	resp, err := s.completion.Generate(ctx, &engine.GenerateRequest{
		Model:       s.chatConfig.DefaultModel,
		Temperature: s.chatConfig.DefaultTemperature,
		Input:       content,
	})
	if err != nil {
		return nil, err
	}

	assistantMsg, err := s.store.AddHistory(ctx, owner, entity.RoleAssistant, resp.Content)
	if err != nil {
		return nil, err
	}

	return &TurnResponse{
		Message: assistantMsg,
	}, nil
}

func (s *service) GetHistory(ctx context.Context, owner string) ([]entity.Message, error) {
	return s.store.GetHistory(ctx, owner)
}
