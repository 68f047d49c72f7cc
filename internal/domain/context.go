package domain

import "time"

// CommandContext identifies who invoked a command and where.
type CommandContext struct {
	InteractionID string
	GuildID       string
	ChannelID     string
	UserID        string
	Username      string
	Timestamp     time.Time
}

func NewCommandContext(interactionID, guildID, channelID, userID, username string) *CommandContext {
	return &CommandContext{
		InteractionID: interactionID,
		GuildID:       guildID,
		ChannelID:     channelID,
		UserID:        userID,
		Username:      username,
		Timestamp:     time.Now(),
	}
}
