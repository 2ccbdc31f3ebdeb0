package chat

import (
	"context"

	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/entity"
)

// GetContext returns the thread's ordered conversation so far. Pure read; the
// thread must exist and belong to owner.
func (s *service) GetContext(ctx context.Context, threadID uint, owner string) ([]entity.Message, error) {
	if _, err := s.store.GetThread(ctx, threadID, owner); err != nil {
		return nil, err
	}

	return s.store.GetMessages(ctx, threadID, "ASC", 0, 0)
}

// buildContext reconstructs the prior conversation for the remote model,
// oldest first. The message identified by excludeID is the utterance being
// answered; the orchestrator appends it to the request separately, so it is
// skipped here. System messages stay in as context. The store's creation
// order is taken as-is, never re-sorted.
func (s *service) buildContext(ctx context.Context, threadID uint, excludeID uint) ([]engine.Message, error) {
	msgs, err := s.store.GetMessages(ctx, threadID, "ASC", 0, 0)
	if err != nil {
		return nil, err
	}

	history := make([]engine.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ID == excludeID {
			continue
		}
		history = append(history, engine.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return history, nil
}
