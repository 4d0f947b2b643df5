package lessons

import (
	"regexp"
	"sort"
	"strings"
)

// roomBaseURL is the external video-room service the call link points at.
const roomBaseURL = "https://meet.jit.si/skillswap-"

var unsafeRoomChars = regexp.MustCompile(`[^a-z0-9]`)

// PairKey builds the canonical order-independent identifier for two users:
// lowercase both emails, sort, join with "::". Sessions and chat threads
// between the same two people share this key regardless of who asks.
func PairKey(a, b string) string {
	pair := []string{strings.ToLower(a), strings.ToLower(b)}
	sort.Strings(pair)
	return strings.Join(pair, "::")
}

// RoomURL derives the stable video-room link for a pair of users. Both
// participants get the same URL. The link itself carries no expiry — the
// session engine decides whether the UI may surface it.
func RoomURL(a, b string) string {
	safe := unsafeRoomChars.ReplaceAllString(PairKey(a, b), "-")
	return roomBaseURL + safe
}
