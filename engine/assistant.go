package engine

import (
	"context"
	"strings"

	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/mylog"
	openai "github.com/sashabaranov/go-openai"
)

type (
	// AssistantEngine is the stateful variant: conversation state lives on a
	// provider-side thread, created once when the local thread is created. A
	// turn appends the utterance remotely, drives a run to completion and
	// reads the newly produced assistant message back.
	AssistantEngine struct {
		logger *mylog.Logger
		client OpenAIClient

		assistantID string
		models      []string
		poller      *RunPoller
	}

	AssistantInfo struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Instructions string `json:"instructions"`
		Model        string `json:"model"`
		CreatedAt    int64  `json:"created_at"`
	}
)

var _ Engine = (*AssistantEngine)(nil)

func NewAssistantEngine(
	logger *mylog.Logger,
	client OpenAIClient,
	openAIConfig *config.OpenAIConfig,
	chatConfig *config.ChatConfig,
) *AssistantEngine {
	return &AssistantEngine{
		logger:      logger,
		client:      client,
		assistantID: openAIConfig.AssistantID,
		models:      chatConfig.Models,
		poller:      NewRunPoller(client, chatConfig),
	}
}

// AssistantID reports the configured remote assistant.
func (e *AssistantEngine) AssistantID() string {
	return e.assistantID
}

func (e *AssistantEngine) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req.Input == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "input is required")
	}
	if req.RemoteThreadID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "remote thread id is required")
	}
	if e.assistantID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "assistant id is not configured")
	}
	// Model override is optional; the assistant's own model applies otherwise.
	if req.Model != "" {
		if strings.HasPrefix(req.Model, anthropicModelPrefix) {
			return nil, errors.Wrapf(errors.ErrInvalidParams, "model %q is not available on the assistant protocol", req.Model)
		}
		if err := validateModel(e.models, req.Model); err != nil {
			return nil, err
		}
	}

	if _, err := e.client.CreateMessage(ctx, req.RemoteThreadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	}); err != nil {
		return nil, wrapRemoteErr(err, "failed to add message to remote thread")
	}

	run, err := e.client.CreateRun(ctx, req.RemoteThreadID, openai.RunRequest{
		AssistantID: e.assistantID,
		Model:       req.Model,
	})
	if err != nil {
		return nil, wrapRemoteErr(err, "failed to create run")
	}

	e.logger.Debug("run submitted", "run_id", run.ID, "thread_id", req.RemoteThreadID, "status", run.Status)

	if run, err = e.poller.Wait(ctx, run); err != nil {
		return nil, err
	}

	reply, err := e.latestAssistantMessage(ctx, req.RemoteThreadID)
	if err != nil {
		return nil, err
	}
	reply.RunID = run.ID

	return reply, nil
}

// latestAssistantMessage scans the remote thread's message list from the
// most-recent end and returns the first assistant-authored entry, which is
// the reply the run just produced.
func (e *AssistantEngine) latestAssistantMessage(ctx context.Context, remoteThreadID string) (*GenerateResponse, error) {
	order := "desc"
	list, err := e.client.ListMessage(ctx, remoteThreadID, nil, &order, nil, nil, nil)
	if err != nil {
		return nil, wrapRemoteErr(err, "failed to list remote thread messages")
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}

		var text strings.Builder
		for _, content := range msg.Content {
			if content.Text != nil {
				text.WriteString(content.Text.Value)
			}
		}
		if text.Len() == 0 {
			continue
		}

		return &GenerateResponse{
			Content:         text.String(),
			RemoteMessageID: msg.ID,
		}, nil
	}

	return nil, errors.Wrapf(errors.ErrUpstream, "no assistant response produced")
}

// CreateRemoteThread provisions the provider-side thread backing an
// assistant-protocol thread. Called once at thread creation, not per turn.
func (e *AssistantEngine) CreateRemoteThread(ctx context.Context) (string, error) {
	thread, err := e.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", wrapRemoteErr(err, "failed to create remote thread")
	}
	return thread.ID, nil
}

func (e *AssistantEngine) DeleteRemoteThread(ctx context.Context, remoteThreadID string) error {
	if _, err := e.client.DeleteThread(ctx, remoteThreadID); err != nil {
		return wrapRemoteErr(err, "failed to delete remote thread")
	}
	return nil
}

func (e *AssistantEngine) ListAssistants(ctx context.Context) ([]AssistantInfo, error) {
	list, err := e.client.ListAssistants(ctx, nil, nil, nil, nil)
	if err != nil {
		return nil, wrapRemoteErr(err, "failed to list assistants")
	}

	infos := make([]AssistantInfo, 0, len(list.Assistants))
	for _, assistant := range list.Assistants {
		infos = append(infos, toAssistantInfo(assistant))
	}
	return infos, nil
}

func (e *AssistantEngine) GetAssistant(ctx context.Context, assistantID string) (*AssistantInfo, error) {
	if assistantID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "assistant id is required")
	}

	assistant, err := e.client.RetrieveAssistant(ctx, assistantID)
	if err != nil {
		return nil, wrapRemoteErr(err, "failed to retrieve assistant")
	}

	info := toAssistantInfo(assistant)
	return &info, nil
}

func toAssistantInfo(assistant openai.Assistant) AssistantInfo {
	info := AssistantInfo{
		ID:        assistant.ID,
		Model:     assistant.Model,
		CreatedAt: assistant.CreatedAt,
	}
	if assistant.Name != nil {
		info.Name = *assistant.Name
	}
	if assistant.Instructions != nil {
		info.Instructions = *assistant.Instructions
	}
	return info
}
