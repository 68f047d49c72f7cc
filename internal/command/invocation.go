package command

import (
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/domain"
)

// Invocation is one inbound command with its string options and reply channel.
type Invocation struct {
	Kind        domain.InteractionKind
	CommandType int
	Name        string
	Options     map[string]string
	Responder   Responder
	Context     *domain.CommandContext
}

// NewInvocation decodes a Discord interaction. Non-string options are dropped.
func NewInvocation(handle *discord.InteractionHandle) *Invocation {
	in := handle.Interaction()
	inv := &Invocation{
		Kind:      domain.InteractionKind(in.Type),
		Options:   make(map[string]string),
		Responder: handle,
	}

	if in.Data != nil {
		inv.CommandType = in.Data.Type
		inv.Name = in.Data.Name
		for _, opt := range in.Data.Options {
			if opt.Type != discord.OptionTypeString {
				continue
			}
			if value, ok := in.Data.StringOption(opt.Name); ok {
				inv.Options[opt.Name] = value
			}
		}
	}

	var userID, username string
	if user := in.Invoker(); user != nil {
		userID, username = user.ID, user.Tag()
	}
	inv.Context = domain.NewCommandContext(in.ID, in.GuildID, in.ChannelID, userID, username)

	return inv
}
