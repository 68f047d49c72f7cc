package discord

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/delivery"
)

var (
	ErrAlreadyResponded = stderrors.New("interaction has already been replied to or deferred")
	ErrNotResponded     = stderrors.New("interaction has not been replied to or deferred")
)

// Responder is the subset of the REST client an interaction reply needs.
type Responder interface {
	CreateInteractionResponse(ctx context.Context, interactionID, token string, resp InteractionResponse) error
	EditOriginalResponse(ctx context.Context, applicationID, token string, msg MessageData) error
	CreateFollowupMessage(ctx context.Context, applicationID, token string, msg MessageData) error
}

// InteractionHandle tracks the reply state of one interaction and implements
// delivery.Interaction on top of the REST endpoints.
type InteractionHandle struct {
	rest          Responder
	interaction   *Interaction
	applicationID string
	createdAt     time.Time
	now           func() time.Time

	mu    sync.Mutex
	state delivery.ReplyState
}

var _ delivery.Interaction = (*InteractionHandle)(nil)

// NewInteractionHandle wraps an inbound interaction. The token lifetime is
// measured from the interaction snowflake, or from receivedAt when the ID
// cannot be decoded.
func NewInteractionHandle(rest Responder, interaction *Interaction, applicationID string, receivedAt time.Time) *InteractionHandle {
	createdAt := receivedAt
	if ts, ok := interaction.CreatedAt(); ok {
		createdAt = ts
	}
	if applicationID == "" {
		applicationID = interaction.ApplicationID
	}
	return &InteractionHandle{
		rest:          rest,
		interaction:   interaction,
		applicationID: applicationID,
		createdAt:     createdAt,
		now:           time.Now,
		state:         delivery.StateFresh,
	}
}

func (h *InteractionHandle) ID() string {
	return h.interaction.ID
}

func (h *InteractionHandle) Interaction() *Interaction {
	return h.interaction
}

// IsRepliable is false for pings and autocomplete, and once the token expired.
func (h *InteractionHandle) IsRepliable() bool {
	switch h.interaction.Type {
	case InteractionTypeApplicationCommand, InteractionTypeMessageComponent, InteractionTypeModalSubmit:
	default:
		return false
	}
	if h.interaction.Token == "" {
		return false
	}
	return h.now().Sub(h.createdAt) < constants.DiscordLimits.InteractionTTL
}

func (h *InteractionHandle) State() delivery.ReplyState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Defer acknowledges the interaction and shows the "thinking" indicator.
func (h *InteractionHandle) Defer(ctx context.Context) error {
	return h.respond(ctx, InteractionResponse{Type: CallbackDeferredChannelMessage})
}

func (h *InteractionHandle) Reply(ctx context.Context, msg delivery.Message) error {
	data := toMessageData(msg)
	return h.respond(ctx, InteractionResponse{Type: CallbackChannelMessage, Data: &data})
}

func (h *InteractionHandle) respond(ctx context.Context, resp InteractionResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == delivery.StateResponded {
		return ErrAlreadyResponded
	}
	if err := h.rest.CreateInteractionResponse(ctx, h.interaction.ID, h.interaction.Token, resp); err != nil {
		return err
	}
	h.state = delivery.StateResponded
	return nil
}

// EditReply replaces the initial response. Ephemeral cannot be toggled on edit.
func (h *InteractionHandle) EditReply(ctx context.Context, msg delivery.Message) error {
	if h.State() != delivery.StateResponded {
		return ErrNotResponded
	}
	return h.rest.EditOriginalResponse(ctx, h.applicationID, h.interaction.Token, MessageData{Content: msg.Content})
}

func (h *InteractionHandle) FollowUp(ctx context.Context, msg delivery.Message) error {
	if h.State() != delivery.StateResponded {
		return ErrNotResponded
	}
	return h.rest.CreateFollowupMessage(ctx, h.applicationID, h.interaction.Token, toMessageData(msg))
}

func toMessageData(msg delivery.Message) MessageData {
	data := MessageData{Content: msg.Content}
	if msg.Ephemeral {
		data.Flags = MessageFlagEphemeral
	}
	return data
}
