package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/mylog"
	openai "github.com/sashabaranov/go-openai"
)

const anthropicModelPrefix = "anthropic/"

// CompletionEngine is the stateless variant: the whole context travels with
// every request and the reply comes back in the same round trip. Models with
// the "anthropic/" prefix go to Anthropic, everything else to OpenAI.
type CompletionEngine struct {
	logger    *mylog.Logger
	openai    OpenAIClient
	anthropic AnthropicClient

	models    []string
	maxTokens int64
}

var _ Engine = (*CompletionEngine)(nil)

func NewCompletionEngine(
	logger *mylog.Logger,
	openaiClient OpenAIClient,
	anthropicClient AnthropicClient,
	chatConfig *config.ChatConfig,
) *CompletionEngine {
	return &CompletionEngine{
		logger:    logger,
		openai:    openaiClient,
		anthropic: anthropicClient,
		models:    chatConfig.Models,
		maxTokens: 1024,
	}
}

func (e *CompletionEngine) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req.Input == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "input is required")
	}
	if err := validateModel(e.models, req.Model); err != nil {
		return nil, err
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "temperature %v out of range [0, 2]", req.Temperature)
	}

	if strings.HasPrefix(req.Model, anthropicModelPrefix) {
		return e.generateAnthropic(ctx, req)
	}
	return e.generateOpenAI(ctx, req)
}

func (e *CompletionEngine) generateOpenAI(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	for _, msg := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	})

	resp, err := e.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, wrapRemoteErr(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrapf(errors.ErrUpstream, "no assistant response produced")
	}

	e.logger.Debug("chat completion finished", "model", req.Model, "id", resp.ID)

	return &GenerateResponse{
		Content:         resp.Choices[0].Message.Content,
		RemoteMessageID: resp.ID,
	}, nil
}

func (e *CompletionEngine) generateAnthropic(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(strings.TrimPrefix(req.Model, anthropicModelPrefix)),
		MaxTokens: e.maxTokens,
	}
	if req.Temperature != 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	for _, msg := range req.History {
		switch msg.Role {
		case entity.RoleSystem:
			// System utterances are instructions, not replayable turns.
			params.System = append(params.System, anthropic.TextBlockParam{
				Text: msg.Content,
			})
			continue
		case entity.RoleUser:
			params.Messages = append(params.Messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
			})
		case entity.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
			})
		default:
			return nil, errors.Wrapf(errors.ErrInvalidParams, "unsupported role %q", msg.Role)
		}
	}
	params.Messages = append(params.Messages, anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleUser,
		Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.Input)},
	})

	resp, err := e.anthropic.NewMessage(ctx, params)
	if err != nil {
		return nil, wrapRemoteErr(err, "anthropic message generation failed")
	}

	var text strings.Builder
	for _, content := range resp.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.Wrapf(errors.ErrUpstream, "no assistant response produced")
	}

	e.logger.Debug("anthropic completion finished", "model", req.Model, "id", resp.ID)

	return &GenerateResponse{
		Content:         text.String(),
		RemoteMessageID: resp.ID,
	}, nil
}

func validateModel(models []string, model string) error {
	if model == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "model is required")
	}
	if !slices.Contains(models, model) {
		return errors.Wrapf(errors.ErrInvalidParams, "unknown model %q", model)
	}
	return nil
}

// wrapRemoteErr tags a failed remote call: deadline expiry becomes ErrTimeout,
// everything else ErrUpstream with the provider's message preserved.
func wrapRemoteErr(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrTimeout, "%s: %v", msg, err)
	}
	return errors.Wrapf(errors.ErrUpstream, "%s: %v", msg, err)
}
