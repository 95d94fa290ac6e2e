package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   uuid.New().String(),
		Send:     make(chan []byte, 16),
		channels: make(map[string]bool),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	h := NewHub()
	sub := newTestClient()
	bystander := newTestClient()
	h.addClient(sub)
	h.addClient(bystander)

	h.subscribeToChannel(sub, "channel:presence")
	h.Broadcast("channel:presence", []byte("hello"))

	require.Len(t, drain(sub), 1)
	assert.Empty(t, drain(bystander))
}

func TestResubscribeDoesNotDuplicateDelivery(t *testing.T) {
	h := NewHub()
	c := newTestClient()
	h.addClient(c)

	h.subscribeToChannel(c, "channel:presence")
	h.subscribeToChannel(c, "channel:presence")
	assert.Equal(t, 1, h.ChannelSubscriberCount("channel:presence"))

	h.Broadcast("channel:presence", []byte("once"))
	assert.Len(t, drain(c), 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	c := newTestClient()
	h.addClient(c)

	h.subscribeToChannel(c, "channel:presence")
	h.unsubscribeFromChannel(c, "channel:presence")

	h.Broadcast("channel:presence", []byte("gone"))
	assert.Empty(t, drain(c))
	assert.Zero(t, h.ChannelSubscriberCount("channel:presence"))
}

func TestRemoveClientCleansUpSubscriptions(t *testing.T) {
	h := NewHub()
	c := newTestClient()
	h.addClient(c)
	h.subscribeToChannel(c, "channel:presence")
	h.subscribeToChannel(c, "channel:user:"+c.UserID)

	h.removeClient(c)

	assert.Zero(t, h.ClientCount())
	assert.Zero(t, h.ChannelSubscriberCount("channel:presence"))
	assert.Zero(t, h.ChannelSubscriberCount("channel:user:"+c.UserID))

	// Send channel is closed so WriteLoop terminates.
	_, open := <-c.Send
	assert.False(t, open)
}

func TestRemoveClientTwiceIsSafe(t *testing.T) {
	h := NewHub()
	c := newTestClient()
	h.addClient(c)
	h.removeClient(c)
	h.removeClient(c)
	assert.Zero(t, h.ClientCount())
}

func TestSubscribeAfterRemovalIsDropped(t *testing.T) {
	h := NewHub()
	c := newTestClient()
	h.addClient(c)
	h.removeClient(c)

	// A subscribe request can still be queued when the client
	// disconnects; once processed after removal it must not land.
	h.subscribeToChannel(c, "channel:presence")
	assert.Zero(t, h.ChannelSubscriberCount("channel:presence"))

	assert.NotPanics(t, func() {
		h.Broadcast("channel:presence", []byte("late"))
	})
}
