package events

import (
	"strings"

	"github.com/google/uuid"
)

// Redis channel prefixes. Conversation channels are scoped to one user
// pair; the presence channel is global so every connected client can
// keep its sidebar current.
const (
	ChannelPrefixConversation = "channel:conversation:"
	ChannelPrefixUser         = "channel:user:"
	ChannelPresence           = "channel:presence"
)

// ConversationKey returns the canonical identifier for the unordered pair
// {a, b}: the two ids sorted and joined. Both participants compute the
// same key without coordination, so it doubles as the channel suffix and
// the conversation column on messages.
func ConversationKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + "-" + bs
}

// ConversationChannel returns the pub/sub channel for the pair {a, b}.
func ConversationChannel(a, b uuid.UUID) string {
	return ChannelPrefixConversation + ConversationKey(a, b)
}

// UserChannel returns the per-user channel used for events addressed to a
// single user regardless of conversation, such as read receipts.
func UserChannel(id uuid.UUID) string {
	return ChannelPrefixUser + id.String()
}

// ConversationParticipants extracts the two participant ids encoded in a
// conversation channel name. ok is false when the name is not a
// well-formed conversation channel.
func ConversationParticipants(channel string) (uuid.UUID, uuid.UUID, bool) {
	suffix, found := strings.CutPrefix(channel, ChannelPrefixConversation)
	if !found {
		return uuid.Nil, uuid.Nil, false
	}
	// UUID strings are fixed-length, so the separator position is known.
	if len(suffix) != 73 || suffix[36] != '-' {
		return uuid.Nil, uuid.Nil, false
	}
	a, err := uuid.Parse(suffix[:36])
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	b, err := uuid.Parse(suffix[37:])
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return a, b, true
}
