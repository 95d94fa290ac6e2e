package chatstore

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain"
)

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func msg(sender, receiver uuid.UUID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    sql.NullString{String: content, Valid: true},
		CreatedAt:  at,
	}
}

func TestLoadStateMachine(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	assert.Equal(t, LoadEmpty, s.State(peer))

	s.BeginLoad(peer)
	assert.Equal(t, LoadLoading, s.State(peer))

	s.FinishLoad(peer, []domain.Message{msg(peer, self, "hi", base)})
	assert.Equal(t, LoadLoaded, s.State(peer))
	assert.Len(t, s.Messages(peer), 1)
}

func TestFailLoadAllowsRetry(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	s.BeginLoad(peer)
	s.FailLoad(peer)
	assert.Equal(t, LoadEmpty, s.State(peer))
}

func TestPushDuringLoadSurvivesMerge(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	s.BeginLoad(peer)
	pushed := msg(peer, self, "pushed mid-flight", base.Add(2*time.Second))
	s.ApplyMessage(peer, pushed)

	history := []domain.Message{
		msg(peer, self, "older", base),
		msg(self, peer, "reply", base.Add(time.Second)),
	}
	s.FinishLoad(peer, history)

	got := s.Messages(peer)
	require.Len(t, got, 3)
	assert.Equal(t, "older", got[0].Content.String)
	assert.Equal(t, "reply", got[1].Content.String)
	assert.Equal(t, pushed.ID, got[2].ID)
}

func TestApplyMessageDedupesById(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	m := msg(peer, self, "once", base)
	s.ApplyMessage(peer, m)
	s.ApplyMessage(peer, m)

	assert.Len(t, s.Messages(peer), 1)
	assert.Equal(t, 1, s.Unread(peer))
}

func TestOutOfOrderInsert(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	late := msg(peer, self, "second", base.Add(time.Minute))
	early := msg(peer, self, "first", base)
	s.ApplyMessage(peer, late)
	s.ApplyMessage(peer, early)

	got := s.Messages(peer)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content.String)
	assert.Equal(t, "second", got[1].Content.String)
}

func TestUnreadCountsOnlyClosedConversations(t *testing.T) {
	self, peer, other := uuid.New(), uuid.New(), uuid.New()
	s := New(self)

	s.Open(peer)
	s.ApplyMessage(peer, msg(peer, self, "visible", base))
	s.ApplyMessage(other, msg(other, self, "hidden", base))

	assert.Equal(t, 0, s.Unread(peer))
	assert.Equal(t, 1, s.Unread(other))
}

func TestOwnMessagesNeverCountAsUnread(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	s.ApplyMessage(peer, msg(self, peer, "mine", base))
	assert.Equal(t, 0, s.Unread(peer))
}

func TestOpenResetsUnread(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	s.ApplyMessage(peer, msg(peer, self, "a", base))
	s.ApplyMessage(peer, msg(peer, self, "b", base.Add(time.Second)))
	require.Equal(t, 2, s.Unread(peer))

	s.Open(peer)
	assert.Equal(t, 0, s.Unread(peer))

	s.Close()
	s.ApplyMessage(peer, msg(peer, self, "c", base.Add(2*time.Second)))
	assert.Equal(t, 1, s.Unread(peer))
}

func TestApplyReadReceiptFlipsOwnMessages(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self)

	mine := msg(self, peer, "sent", base)
	theirs := msg(peer, self, "received", base.Add(time.Second))
	s.ApplyMessage(peer, mine)
	s.ApplyMessage(peer, theirs)

	readAt := base.Add(time.Minute)
	s.ApplyReadReceipt(peer, []uuid.UUID{mine.ID, theirs.ID, uuid.New()}, readAt)

	got := s.Messages(peer)
	require.Len(t, got, 2)
	assert.True(t, got[0].Read)
	assert.Equal(t, readAt, got[0].ReadAt.Time)
	// The receipt only covers messages we sent.
	assert.False(t, got[1].Read)
}

func TestTypingExpiresOnItsOwn(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self, WithTypingTTL(20*time.Millisecond))

	s.SetTyping(peer, "Bob", true)
	typing, name := s.Typing(peer)
	require.True(t, typing)
	assert.Equal(t, "Bob", name)

	assert.Eventually(t, func() bool {
		typing, _ := s.Typing(peer)
		return !typing
	}, time.Second, 5*time.Millisecond)
}

func TestTypingClearedByStopEvent(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self, WithTypingTTL(time.Hour))

	s.SetTyping(peer, "Bob", true)
	s.SetTyping(peer, "Bob", false)

	typing, _ := s.Typing(peer)
	assert.False(t, typing)
}

func TestTypingClearedByIncomingMessage(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self, WithTypingTTL(time.Hour))

	s.SetTyping(peer, "Bob", true)
	s.ApplyMessage(peer, msg(peer, self, "done typing", base))

	typing, _ := s.Typing(peer)
	assert.False(t, typing)
}

func TestTypingRefreshRearmsTimer(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self, WithTypingTTL(60*time.Millisecond))

	s.SetTyping(peer, "Bob", true)
	time.Sleep(40 * time.Millisecond)
	s.SetTyping(peer, "Bob", true)
	time.Sleep(40 * time.Millisecond)

	// 80ms after the first event but only 40ms after the refresh.
	typing, _ := s.Typing(peer)
	assert.True(t, typing)
}

func TestStaleExpiryDoesNotClearRearmedTyping(t *testing.T) {
	self, peer := uuid.New(), uuid.New()
	s := New(self, WithTypingTTL(time.Hour))

	s.SetTyping(peer, "Bob", true)
	s.mu.Lock()
	c := s.conv(peer)
	stale := c.typingGen
	s.mu.Unlock()

	// Re-arming bumps the generation; a callback from the first timer
	// that already fired must see itself outdated and leave the
	// indicator alone.
	s.SetTyping(peer, "Bob", true)
	s.expireTyping(c, stale)

	typing, _ := s.Typing(peer)
	assert.True(t, typing)

	// The current generation still expires normally.
	s.mu.Lock()
	current := c.typingGen
	s.mu.Unlock()
	s.expireTyping(c, current)
	typing, _ = s.Typing(peer)
	assert.False(t, typing)
}
