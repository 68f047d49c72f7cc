package discord

import (
	"encoding/json"
	"strconv"
	"time"
)

// Gateway opcodes.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpResume         = 6
	OpReconnect      = 7
	OpInvalidSession = 9
	OpHello          = 10
	OpHeartbeatACK   = 11
)

// Gateway intents. Slash commands need no privileged intent.
const (
	IntentGuilds        = 1 << 0
	IntentGuildMessages = 1 << 9

	DefaultIntents = IntentGuilds | IntentGuildMessages
)

// Interaction types.
const (
	InteractionTypePing               = 1
	InteractionTypeApplicationCommand = 2
	InteractionTypeMessageComponent   = 3
	InteractionTypeAutocomplete       = 4
	InteractionTypeModalSubmit        = 5
)

// Interaction callback types.
const (
	CallbackChannelMessage         = 4
	CallbackDeferredChannelMessage = 5
)

const (
	ApplicationCommandChatInput = 1
	OptionTypeString            = 3

	// MessageFlagEphemeral hides a message from everyone but the invoker.
	MessageFlagEphemeral = 1 << 6
)

const discordEpochMillis = 1420070400000

type GatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type outgoingPayload struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type Identify struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties IdentifyProperties `json:"properties"`
}

type Resume struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

type Ready struct {
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
	User             User   `json:"user"`
	Application      struct {
		ID string `json:"id"`
	} `json:"application"`
}

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name,omitempty"`
	Discriminator string `json:"discriminator,omitempty"`
}

// Tag is the display form used in logs.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

type Member struct {
	User *User  `json:"user,omitempty"`
	Nick string `json:"nick,omitempty"`
}

type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          int              `json:"type"`
	Token         string           `json:"token"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Member        *Member          `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Data          *InteractionData `json:"data,omitempty"`
}

// Invoker returns the user who triggered the interaction in a guild or a DM.
func (i *Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CreatedAt decodes the snowflake timestamp of the interaction ID.
func (i *Interaction) CreatedAt() (time.Time, bool) {
	id, err := strconv.ParseUint(i.ID, 10, 64)
	if err != nil || id == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(id>>22) + discordEpochMillis), true
}

type InteractionData struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Options []InteractionOption `json:"options,omitempty"`
}

// StringOption returns the value of a string option by name.
func (d *InteractionData) StringOption(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, opt := range d.Options {
		if opt.Name != name {
			continue
		}
		var value string
		if err := json.Unmarshal(opt.Value, &value); err != nil {
			return "", false
		}
		return value, true
	}
	return "", false
}

type InteractionOption struct {
	Name  string          `json:"name"`
	Type  int             `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type ApplicationCommand struct {
	ID          string                     `json:"id,omitempty"`
	Type        int                        `json:"type,omitempty"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
}

type ApplicationCommandOption struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

type InteractionResponse struct {
	Type int          `json:"type"`
	Data *MessageData `json:"data,omitempty"`
}

// MessageData is the message body of callbacks, edits and follow-ups.
// Content is always serialized so an empty answer still reaches Discord.
type MessageData struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

type GatewayState string

const (
	StateConnecting   GatewayState = "CONNECTING"
	StateConnected    GatewayState = "CONNECTED"
	StateReady        GatewayState = "READY"
	StateDisconnected GatewayState = "DISCONNECTED"
	StateReconnecting GatewayState = "RECONNECTING"
	StateFailed       GatewayState = "FAILED"
)

func (s GatewayState) String() string {
	return string(s)
}
