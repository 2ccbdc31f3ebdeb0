package engine

import (
	"context"

	"github.com/lumora-ai/chatcore/entity"
)

type (
	// Message is one role-tagged utterance of the context sent to a provider.
	Message struct {
		Role    entity.Role
		Content string
	}

	GenerateRequest struct {
		Model       string
		Temperature float32

		// History is the prior conversation, oldest first, excluding Input.
		// Only the completion protocol sends it; the assistant protocol keeps
		// its state on the provider side.
		History []Message

		// Input is the user utterance being answered.
		Input string

		// RemoteThreadID addresses the provider-side thread, assistant
		// protocol only.
		RemoteThreadID string
	}

	GenerateResponse struct {
		Content string

		// RemoteMessageID correlates the reply with the provider-side message
		// or completion that produced it.
		RemoteMessageID string

		// RunID is set by the assistant protocol.
		RunID string
	}

	// Engine hides the protocol difference between the two backends behind a
	// single capability: given context, produce the next assistant utterance.
	Engine interface {
		Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	}
)
