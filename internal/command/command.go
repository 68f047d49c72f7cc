package command

import (
	"context"

	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/domain"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Definition() discord.ApplicationCommand
	Execute(ctx context.Context, inv *Invocation) error
}

// Responder is the reply channel of an invocation. Defer sends the deferred
// acknowledgement and moves the handle to StateResponded.
type Responder interface {
	delivery.Interaction
	Defer(ctx context.Context) error
}

type Answerer interface {
	Name() string
	Answer(ctx context.Context, question string) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// NopAuditRecorder discards audit entries.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(context.Context, domain.AuditEntry) error { return nil }

type Dependencies struct {
	Answerer  Answerer
	Deliverer *delivery.Deliverer
	Audit     AuditRecorder
	Logger    *zap.Logger
}
