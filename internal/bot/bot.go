package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/command"
	"github.com/kapu/liqu-discord-bot/internal/config"
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

type Gateway interface {
	Connect(ctx context.Context) error
	Disconnect() error
	OnReady(callback discord.ReadyCallback) func()
	OnInteraction(callback discord.InteractionCallback) func()
	OnStateChange(callback discord.StateCallback) func()
}

// ErrGatewayFailed is returned by Start when the gateway session can no
// longer be recovered.
var ErrGatewayFailed = stderrors.New("discord gateway session failed")

// REST is the Discord REST surface the bot needs.
type REST interface {
	discord.Responder
	BulkOverwriteGlobalCommands(ctx context.Context, applicationID string, commands []discord.ApplicationCommand) ([]discord.ApplicationCommand, error)
}

type InteractionClaimer interface {
	Claim(ctx context.Context, interactionID string) bool
}

type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Gateway    Gateway
	REST       REST
	Registry   *command.Registry
	Dispatcher *command.Dispatcher
	Claimer    InteractionClaimer
	Closers    []io.Closer
}

// Bot wires gateway events to the command dispatcher. Each interaction is
// handled on its own goroutine; a panic in one handler is logged and does not
// affect the others.
type Bot struct {
	config     *config.Config
	logger     *zap.Logger
	gateway    Gateway
	rest       REST
	registry   *command.Registry
	dispatcher *command.Dispatcher
	claimer    InteractionClaimer
	closers    []io.Closer

	handlers     conc.WaitGroup
	unsubscribe  []func()
	runCtx       context.Context
	runCtxMu     sync.RWMutex
	shutdownOnce sync.Once
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies must not be nil")
	}
	if deps.Config == nil || deps.Gateway == nil || deps.REST == nil || deps.Dispatcher == nil || deps.Registry == nil {
		return nil, fmt.Errorf("bot dependencies incomplete")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		config:     deps.Config,
		logger:     logger,
		gateway:    deps.Gateway,
		rest:       deps.REST,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		claimer:    deps.Claimer,
		closers:    deps.Closers,
		runCtx:     context.Background(),
	}, nil
}

// Start connects to the gateway and blocks until ctx is cancelled or the
// gateway fails for good.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Bot script started...")

	// Handlers outlive the run context so in-flight replies finish during shutdown.
	b.runCtxMu.Lock()
	b.runCtx = context.WithoutCancel(ctx)
	b.runCtxMu.Unlock()

	failed := make(chan struct{}, 1)
	b.unsubscribe = append(b.unsubscribe,
		b.gateway.OnReady(b.handleReady),
		b.gateway.OnInteraction(b.handleInteraction),
		b.gateway.OnStateChange(func(state discord.GatewayState) {
			if state != discord.StateFailed {
				return
			}
			select {
			case failed <- struct{}{}:
			default:
			}
		}),
	)

	if err := b.gateway.Connect(ctx); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-failed:
		b.logger.Error("Gateway failed, stopping bot")
		return ErrGatewayFailed
	}
}

func (b *Bot) handlerContext() context.Context {
	b.runCtxMu.RLock()
	defer b.runCtxMu.RUnlock()
	return b.runCtx
}

func (b *Bot) handleReady(ready *discord.Ready) {
	b.logger.Info(fmt.Sprintf("Logged in as %s!", ready.User.Tag()),
		zap.String("session_id", ready.SessionID),
	)

	b.spawn("register", func() {
		ctx, cancel := context.WithTimeout(b.handlerContext(), 30*time.Second)
		defer cancel()
		if err := b.RegisterCommands(ctx); err != nil {
			b.logger.Error("Failed to register slash command", zap.Error(err))
		}
	})
}

// RegisterCommands replaces the global application commands with the
// registry's definitions.
func (b *Bot) RegisterCommands(ctx context.Context) error {
	applicationID := b.config.Discord.ClientID
	b.logger.Info("Registering slash command...", zap.String("application_id", applicationID))

	registered, err := b.rest.BulkOverwriteGlobalCommands(ctx, applicationID, b.registry.Definitions())
	if err != nil {
		return errors.NewRegistrationError(applicationID, err)
	}

	b.logger.Info("Slash command registered successfully.", zap.Int("commands", len(registered)))
	return nil
}

func (b *Bot) handleInteraction(interaction *discord.Interaction) {
	receivedAt := time.Now()

	b.spawn("interaction", func() {
		ctx := b.handlerContext()
		if b.claimer != nil && !b.claimer.Claim(ctx, interaction.ID) {
			return
		}

		handle := discord.NewInteractionHandle(b.rest, interaction, b.config.Discord.ClientID, receivedAt)
		b.dispatcher.Handle(ctx, command.NewInvocation(handle))
	})
}

func (b *Bot) spawn(name string, fn func()) {
	b.handlers.Go(func() {
		var pc panics.Catcher
		pc.Try(fn)
		if recovered := pc.Recovered(); recovered != nil {
			b.logger.Error("Handler panicked",
				zap.String("handler", name),
				zap.Any("panic", recovered.Value),
				zap.String("stack", string(recovered.Stack)),
			)
		}
	})
}

// Shutdown disconnects from the gateway, waits for in-flight handlers until
// ctx expires, then releases the closers.
func (b *Bot) Shutdown(ctx context.Context) error {
	var shutdownErr error

	b.shutdownOnce.Do(func() {
		for _, unsubscribe := range b.unsubscribe {
			unsubscribe()
		}

		if err := b.gateway.Disconnect(); err != nil {
			b.logger.Warn("Gateway disconnect failed", zap.Error(err))
		}

		done := make(chan struct{})
		go func() {
			b.handlers.Wait()
			close(done)
		}()

		select {
		case <-done:
			b.logger.Info("All handlers finished")
		case <-ctx.Done():
			b.logger.Warn("Timeout waiting for handlers to finish")
			shutdownErr = ctx.Err()
		}

		for i := len(b.closers) - 1; i >= 0; i-- {
			if err := b.closers[i].Close(); err != nil {
				b.logger.Warn("Failed to close resource", zap.Error(err))
			}
		}
	})

	return shutdownErr
}
