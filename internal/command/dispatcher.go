package command

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Dispatcher routes chat-input invocations to registered commands.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Handle runs the command named by inv. It reports false when the invocation
// was ignored because it is not a chat-input command or names no registered
// command. Command errors are logged, never returned.
func (d *Dispatcher) Handle(ctx context.Context, inv *Invocation) bool {
	if d == nil || d.registry == nil || inv == nil {
		return false
	}

	if !inv.Kind.IsChatInputCommand(inv.CommandType) {
		d.logger.Debug("Ignoring non chat-input interaction",
			zap.Int("kind", int(inv.Kind)),
			zap.Int("command_type", inv.CommandType),
		)
		return false
	}

	err := d.registry.Execute(ctx, inv)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		d.logger.Debug("Ignoring unknown command", zap.String("command", inv.Name))
		return false
	case err != nil:
		d.logger.Error("Command execution failed",
			zap.String("command", inv.Name),
			zap.Error(err),
		)
	}
	return true
}
