package delivery

import "context"

// ReplyState is the reply lifecycle of an interaction. It only ever moves
// from StateFresh to StateResponded.
type ReplyState int

const (
	StateFresh ReplyState = iota
	StateResponded
)

func (s ReplyState) String() string {
	switch s {
	case StateFresh:
		return "FRESH"
	case StateResponded:
		return "RESPONDED"
	default:
		return "UNKNOWN"
	}
}

// Message is one outgoing chat message.
type Message struct {
	Content   string
	Ephemeral bool
}

// Interaction is the reply channel of a single inbound command. The chat
// platform owns its state; implementations move to StateResponded after a
// successful Reply (or defer).
type Interaction interface {
	ID() string
	IsRepliable() bool
	State() ReplyState
	Reply(ctx context.Context, msg Message) error
	EditReply(ctx context.Context, msg Message) error
	FollowUp(ctx context.Context, msg Message) error
}
