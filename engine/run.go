package engine

import (
	"context"
	"time"

	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/errors"
	openai "github.com/sashabaranov/go-openai"
)

// RunPoller drives a remote run to a terminal state. Polling is bounded both
// by an overall deadline and a poll count; exhausting either yields
// ErrTimeout.
type RunPoller struct {
	client OpenAIClient

	interval time.Duration
	timeout  time.Duration
	maxPolls int
}

func NewRunPoller(client OpenAIClient, chatConfig *config.ChatConfig) *RunPoller {
	return &RunPoller{
		client:   client,
		interval: chatConfig.RunPollInterval,
		timeout:  chatConfig.RunPollTimeout,
		maxPolls: chatConfig.RunMaxPolls,
	}
}

// Wait takes the run as returned by submission and polls its status until a
// terminal state. completed returns the run for result extraction; failed,
// expired and cancelled return ErrUpstream tagged with the terminal status.
func (p *RunPoller) Wait(ctx context.Context, run openai.Run) (openai.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for polls := 0; ; polls++ {
		switch run.Status {
		case openai.RunStatusCompleted:
			return run, nil
		case openai.RunStatusFailed, openai.RunStatusExpired, openai.RunStatusCancelled:
			return run, errors.Wrapf(errors.ErrUpstream, "run %s terminated with status %s", run.ID, run.Status)
		}

		if polls >= p.maxPolls {
			return run, errors.Wrapf(errors.ErrTimeout, "run %s still %s after %d polls", run.ID, run.Status, polls)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return run, errors.Wrapf(errors.ErrTimeout, "run %s did not finish within %s", run.ID, p.timeout)
			}
			return run, errors.WithStack(ctx.Err())
		case <-ticker.C:
		}

		next, err := p.client.RetrieveRun(ctx, run.ThreadID, run.ID)
		if err != nil {
			return run, wrapRemoteErr(err, "failed to retrieve run")
		}
		run = next
	}
}
