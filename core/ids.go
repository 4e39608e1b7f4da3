package core

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"discordbridge/utils"
)

// ForwardIDPrefix prefixes the correlation id attached to every webhook forward
const ForwardIDPrefix = "fwd"

// NewID generates a new ULID with the given prefix.
// The format is: prefix_ULID
// Example: core.NewID("fwd") returns "fwd_01G0EZ1XTM37C5X11SQTDNCTM1"
func NewID(prefix string) string {
	utils.AssertInvariant(prefix != "" && strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)

	return strings.ToLower(strings.TrimSpace(prefix)) + "_" + id.String()
}

// IsValidULID checks if the given string is a prefixed ULID of the form prefix_ULID.
func IsValidULID(id string) bool {
	prefix, ulidPart, found := strings.Cut(id, "_")
	if !found || prefix == "" || strings.Contains(ulidPart, "_") {
		return false
	}

	for _, r := range prefix {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	if len(ulidPart) != ulid.EncodedSize {
		return false
	}

	// ulid.Parse is case-insensitive, generated ids are always upper case
	if strings.ToUpper(ulidPart) != ulidPart {
		return false
	}

	_, err := ulid.ParseStrict(ulidPart)
	return err == nil
}
