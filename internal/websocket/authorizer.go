package websocket

import (
	"strings"

	"pairchat/internal/events"
)

// ChannelAuthorizer decides whether a user may subscribe to a channel.
// Conversation participants are encoded in the channel name itself, so
// the check needs no repository round trip.
type ChannelAuthorizer struct{}

func NewChannelAuthorizer() *ChannelAuthorizer {
	return &ChannelAuthorizer{}
}

// CanSubscribe reports whether userID may subscribe to channel.
func (a *ChannelAuthorizer) CanSubscribe(userID string, channel string) bool {
	// The global presence channel is open to every authenticated client.
	if channel == events.ChannelPresence {
		return true
	}

	// A user channel belongs to exactly one user.
	if strings.HasPrefix(channel, events.ChannelPrefixUser) {
		return channel == events.ChannelPrefixUser+userID
	}

	// Conversation channels require the requester to be a participant.
	if strings.HasPrefix(channel, events.ChannelPrefixConversation) {
		a1, b1, ok := events.ConversationParticipants(channel)
		if !ok {
			return false
		}
		return userID == a1.String() || userID == b1.String()
	}

	// Default deny.
	return false
}
