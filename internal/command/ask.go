package command

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/domain"
	"go.uber.org/zap"
)

type AskCommand struct {
	deps *Dependencies
}

func NewAskCommand(deps *Dependencies) *AskCommand {
	return &AskCommand{deps: deps}
}

func (c *AskCommand) Name() string {
	return constants.AskCommand.Name
}

func (c *AskCommand) Description() string {
	return constants.AskCommand.Description
}

func (c *AskCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Type:        discord.ApplicationCommandChatInput,
		Name:        c.Name(),
		Description: c.Description(),
		Options: []discord.ApplicationCommandOption{
			{
				Type:        discord.OptionTypeString,
				Name:        constants.AskCommand.QuestionOption,
				Description: constants.AskCommand.QuestionDescription,
				Required:    true,
			},
		},
	}
}

// Execute defers the reply, asks the backend once and delivers the answer.
// Every failure after the invocation is accepted ends in a logged, user-visible
// apology; Execute itself only fails on missing wiring.
func (c *AskCommand) Execute(ctx context.Context, inv *Invocation) error {
	if c.deps == nil || c.deps.Answerer == nil || c.deps.Deliverer == nil {
		return fmt.Errorf("ask command dependencies not configured")
	}
	if inv == nil || inv.Responder == nil {
		return fmt.Errorf("invocation has no responder")
	}

	logger := c.deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("interaction_id", inv.Responder.ID()))

	start := time.Now()
	question := inv.Options[constants.AskCommand.QuestionOption]
	entry := newAuditEntry(inv, question, c.deps.Answerer.Name())

	if err := inv.Responder.Defer(ctx); err != nil {
		logger.Error("Failed to defer reply", zap.Error(err))
	}

	logger.Info("Asking AI (with context)",
		zap.String("backend", c.deps.Answerer.Name()),
		zap.Int("question_length", entry.QuestionLength),
	)

	answer, err := c.deps.Answerer.Answer(ctx, question)
	if err != nil {
		logger.Error("Error during AI interaction", zap.Error(err))
		c.sendFetchError(ctx, inv.Responder, logger)
		entry.Outcome = domain.OutcomeFetchFailed
		c.record(ctx, entry, start, logger)
		return nil
	}

	entry.AnswerLength = utf8.RuneCountInString(answer)
	logger.Info("AI answer received", zap.Int("answer_length", entry.AnswerLength))

	out := c.deps.Deliverer.SendLongReply(ctx, inv.Responder, answer)
	entry.Chunks = out.Sent
	switch {
	case out.Skipped || out.Err != nil:
		entry.Outcome = domain.OutcomeUndelivered
	case answer == constants.UnexpectedResponseReply:
		entry.Outcome = domain.OutcomeDegraded
	default:
		entry.Outcome = domain.OutcomeAnswered
	}

	c.record(ctx, entry, start, logger)
	return nil
}

func (c *AskCommand) sendFetchError(ctx context.Context, r Responder, logger *zap.Logger) {
	var err error
	if r.State() == delivery.StateResponded {
		err = r.EditReply(ctx, delivery.Message{Content: constants.ContactErrorReply})
	} else {
		err = r.Reply(ctx, delivery.Message{Content: constants.ContactErrorReply, Ephemeral: true})
	}
	if err != nil {
		logger.Error("Error sending error reply", zap.Error(err))
	}
}

func (c *AskCommand) record(ctx context.Context, entry domain.AuditEntry, start time.Time, logger *zap.Logger) {
	if c.deps.Audit == nil {
		return
	}
	entry.Duration = time.Since(start)
	if err := c.deps.Audit.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record ask audit entry", zap.Error(err))
	}
}

func newAuditEntry(inv *Invocation, question, backend string) domain.AuditEntry {
	entry := domain.AuditEntry{
		InteractionID:  inv.Responder.ID(),
		QuestionLength: utf8.RuneCountInString(question),
		Backend:        backend,
		CreatedAt:      time.Now(),
	}
	if inv.Context != nil {
		entry.GuildID = inv.Context.GuildID
		entry.ChannelID = inv.Context.ChannelID
		entry.UserID = inv.Context.UserID
	}
	return entry
}
