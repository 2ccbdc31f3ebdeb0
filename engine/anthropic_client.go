package engine

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicClient is the slice of the Anthropic SDK the completion engine
// calls.
type AnthropicClient interface {
	NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient wraps the SDK client behind AnthropicClient.
func NewAnthropicClient(client anthropic.Client) AnthropicClient {
	return &anthropicClient{client: client}
}

func (c *anthropicClient) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.client.Messages.New(ctx, params)
}
