package utils

import "unicode/utf8"

// DiscordMessageLimit is the maximum number of characters Discord accepts in a message body
const DiscordMessageLimit = 2000

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// TrimDiscordMessage shortens a message to Discord's character limit, marking the cut with an ellipsis.
func TrimDiscordMessage(message string) string {
	if utf8.RuneCountInString(message) <= DiscordMessageLimit {
		return message
	}

	const truncationSuffix = "..."
	runes := []rune(message)
	return string(runes[:DiscordMessageLimit-len(truncationSuffix)]) + truncationSuffix
}
