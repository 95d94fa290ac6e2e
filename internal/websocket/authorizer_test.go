package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pairchat/internal/events"
)

func TestCanSubscribePresenceChannel(t *testing.T) {
	a := NewChannelAuthorizer()
	assert.True(t, a.CanSubscribe(uuid.New().String(), events.ChannelPresence))
}

func TestCanSubscribeOwnUserChannelOnly(t *testing.T) {
	a := NewChannelAuthorizer()
	me := uuid.New()
	other := uuid.New()

	assert.True(t, a.CanSubscribe(me.String(), events.UserChannel(me)))
	assert.False(t, a.CanSubscribe(me.String(), events.UserChannel(other)))
}

func TestCanSubscribeConversationRequiresParticipation(t *testing.T) {
	a := NewChannelAuthorizer()
	alice := uuid.New()
	bob := uuid.New()
	eve := uuid.New()

	channel := events.ConversationChannel(alice, bob)
	assert.True(t, a.CanSubscribe(alice.String(), channel))
	assert.True(t, a.CanSubscribe(bob.String(), channel))
	assert.False(t, a.CanSubscribe(eve.String(), channel))
}

func TestCanSubscribeRejectsMalformedChannels(t *testing.T) {
	a := NewChannelAuthorizer()
	me := uuid.New().String()

	assert.False(t, a.CanSubscribe(me, ""))
	assert.False(t, a.CanSubscribe(me, "channel:conversation:garbage"))
	assert.False(t, a.CanSubscribe(me, "channel:somethingelse:"+me))
	assert.False(t, a.CanSubscribe(me, "presence"))
}
