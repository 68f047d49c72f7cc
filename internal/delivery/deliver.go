package delivery

import (
	"context"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"go.uber.org/zap"
)

const (
	stageReply    = "reply"
	stageEdit     = "edit"
	stageFollowUp = "followup"
)

// Outcome describes what Deliver did. It is informational: delivery failures
// are logged and never returned to the caller as errors.
type Outcome struct {
	Sent       int
	Skipped    bool
	Apologized bool
	Err        error
}

// Deliverer sends chunked replies to an interaction, strictly in order.
type Deliverer struct {
	maxLen int
	logger *zap.Logger
}

func NewDeliverer(maxLen int, logger *zap.Logger) *Deliverer {
	if maxLen <= 0 {
		maxLen = constants.DiscordLimits.MaxMessageLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{maxLen: maxLen, logger: logger}
}

// SendLongReply chunks text and delivers it.
func (d *Deliverer) SendLongReply(ctx context.Context, it Interaction, text string) Outcome {
	return d.Deliver(ctx, it, Chunk(text, d.maxLen))
}

// Deliver sends chunks[0] as an edit of the existing response (when the
// interaction was already deferred or answered) or as the first reply, then
// every further chunk as a follow-up, waiting for each send to finish. The
// first failure stops the sequence; one ephemeral apology follow-up is then
// attempted if a reply channel exists.
func (d *Deliverer) Deliver(ctx context.Context, it Interaction, chunks []string) Outcome {
	var out Outcome
	if it == nil || !it.IsRepliable() {
		id := "unknown"
		if it != nil {
			id = it.ID()
		}
		d.logger.Warn("Interaction is not repliable", zap.String("interaction_id", id))
		out.Skipped = true
		return out
	}

	if len(chunks) == 0 {
		chunks = []string{""}
	}

	for i, chunk := range chunks {
		stage, err := d.send(ctx, it, i, chunk)
		if err != nil {
			out.Err = errors.NewDeliveryError(stage, i, err)
			d.logger.Error("Error sending long reply",
				zap.String("interaction_id", it.ID()),
				zap.String("stage", stage),
				zap.Int("chunk", i),
				zap.Int("chunks", len(chunks)),
				zap.Error(err),
			)
			out.Apologized = d.apologize(ctx, it)
			return out
		}
		out.Sent++
	}

	d.logger.Debug("Reply delivered",
		zap.String("interaction_id", it.ID()),
		zap.Int("chunks", len(chunks)),
	)
	return out
}

func (d *Deliverer) send(ctx context.Context, it Interaction, index int, chunk string) (string, error) {
	msg := Message{Content: chunk}
	switch {
	case index > 0:
		return stageFollowUp, it.FollowUp(ctx, msg)
	case it.State() == StateResponded:
		return stageEdit, it.EditReply(ctx, msg)
	default:
		return stageReply, it.Reply(ctx, msg)
	}
}

func (d *Deliverer) apologize(ctx context.Context, it Interaction) bool {
	if it.State() != StateResponded {
		d.logger.Debug("No reply channel for apology", zap.String("interaction_id", it.ID()))
		return false
	}

	err := it.FollowUp(ctx, Message{
		Content:   constants.PartialDeliveryReply,
		Ephemeral: true,
	})
	if err != nil {
		d.logger.Error("Error sending follow-up error message",
			zap.String("interaction_id", it.ID()),
			zap.Error(err),
		)
		return false
	}
	return true
}
