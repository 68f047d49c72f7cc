package delivery

import (
	"unicode/utf8"

	"github.com/kapu/liqu-discord-bot/internal/constants"
)

// Chunk splits text into consecutive pieces of at most maxLen characters
// (runes), in order. Joining the result yields text unchanged. An empty text
// produces a single empty chunk so that a reply is always attempted.
// A non-positive maxLen selects the Discord message limit.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = constants.DiscordLimits.MaxMessageLength
	}
	if text == "" {
		return []string{""}
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/maxLen+1)
	start, count := 0, 0
	for i := range text {
		if count == maxLen {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, text[start:])
}
