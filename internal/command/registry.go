package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/util"
)

// ErrUnknownCommand is returned when a command dispatch is attempted for an
// unregistered key.
var ErrUnknownCommand = errors.New("unknown command")

// Registry stores command handlers keyed by their canonical names.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Command
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Command),
	}
}

// Register adds a command handler to the registry. The handler name is stored
// trimmed and lowercased to provide case-insensitive lookups.
func (r *Registry) Register(handler Command) {
	if handler == nil {
		return
	}

	name := util.Normalize(handler.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Execute runs the handler registered for inv.Name.
func (r *Registry) Execute(ctx context.Context, inv *Invocation) error {
	if r == nil {
		return fmt.Errorf("command registry is nil")
	}
	if inv == nil {
		return fmt.Errorf("invocation is nil")
	}

	handler := r.getHandler(inv.Name)
	if handler == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
	}

	return handler.Execute(ctx, inv)
}

// Definitions returns the slash-command schema of every handler, sorted by name.
func (r *Registry) Definitions() []discord.ApplicationCommand {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]discord.ApplicationCommand, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Count returns the number of registered command handlers.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *Registry) getHandler(key string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key == "" {
		return nil
	}
	if handler, ok := r.handlers[util.Normalize(key)]; ok {
		return handler
	}
	return nil
}
