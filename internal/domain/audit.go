package domain

import "time"

// AuditEntry is the metadata recorded for one /ask dispatch. It never carries
// the question, prompt or answer text.
type AuditEntry struct {
	InteractionID  string
	GuildID        string
	ChannelID      string
	UserID         string
	QuestionLength int
	AnswerLength   int
	Chunks         int
	Backend        string
	Outcome        Outcome
	Duration       time.Duration
	CreatedAt      time.Time
}
