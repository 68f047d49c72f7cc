package domain

// InteractionKind mirrors the Discord interaction type.
type InteractionKind int

const (
	InteractionPing         InteractionKind = 1
	InteractionCommand      InteractionKind = 2
	InteractionComponent    InteractionKind = 3
	InteractionAutocomplete InteractionKind = 4
	InteractionModalSubmit  InteractionKind = 5
)

// IsChatInputCommand is true only for slash commands typed in the chat box.
func (k InteractionKind) IsChatInputCommand(commandType int) bool {
	return k == InteractionCommand && commandType == ChatInputCommandType
}

// ChatInputCommandType is the application command type of a slash command.
const ChatInputCommandType = 1

// Outcome labels the terminal state of one dispatch.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeDegraded    Outcome = "degraded"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeUndelivered Outcome = "undelivered"
)
