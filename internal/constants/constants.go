package constants

import "time"

const Version = "1.0.0-go"

var DiscordLimits = struct {
	MaxMessageLength int
	InteractionTTL   time.Duration
}{
	MaxMessageLength: 2000,             // Discord message content limit (characters)
	InteractionTTL:   15 * time.Minute, // interaction token lifetime
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	ClaimTTL     time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	ClaimTTL:     15 * time.Minute,
	KeyPrefix:    "liqu:interaction:",
}

var APIConfig = struct {
	DiscordBaseURL    string
	DiscordGatewayURL string
	DiscordTimeout    time.Duration
	GeminiBaseURL     string
	GeminiModel       string
	OpenAIModel       string
}{
	DiscordBaseURL:    "https://discord.com/api/v10",
	DiscordGatewayURL: "wss://gateway.discord.gg/?v=10&encoding=json",
	DiscordTimeout:    10 * time.Second,
	GeminiBaseURL:     "https://generativelanguage.googleapis.com",
	GeminiModel:       "gemini-1.5-flash-latest",
	OpenAIModel:       "gpt-4o-mini",
}

// User-facing strings.
const (
	DefaultPersona          = "You are a helpful assistant. Answer the user's question."
	UnexpectedResponseReply = "Sorry, I received an unexpected response from the AI."
	ContactErrorReply       = "Sorry, there was an error contacting the AI."
	PartialDeliveryReply    = "Sorry, I had trouble sending the full response."
)

var AskCommand = struct {
	Name                string
	Description         string
	QuestionOption      string
	QuestionDescription string
}{
	Name:                "ask",
	Description:         "Ask Liq'u (Gemini) a question",
	QuestionOption:      "question",
	QuestionDescription: "Your question",
}
