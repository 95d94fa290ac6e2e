package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain"
	"pairchat/internal/events"
	chat_errors "pairchat/pkg/errors"
	"pairchat/pkg/logger"
)

type fakeUserRepo struct {
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, chat_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (domain.User, error) {
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return domain.User{}, chat_errors.ErrNotFound
}

func (r *fakeUserRepo) ListOthers(_ context.Context, userID uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.ID != userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, chat_errors.ErrNotFound
	}
	u.Status = status
	r.users[id] = u
	return u, nil
}

func (r *fakeUserRepo) DeleteByExternalID(_ context.Context, externalID string) error {
	for id, u := range r.users {
		if u.ExternalID == externalID {
			delete(r.users, id)
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

type fakeMessageRepo struct {
	messages []domain.Message
	clock    time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.ConversationKey == "" {
		m.ConversationKey = events.ConversationKey(m.SenderID, m.ReceiverID)
	}
	r.clock = r.clock.Add(time.Second)
	m.CreatedAt = r.clock
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) ListConversation(_ context.Context, conversationKey string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.ConversationKey == conversationKey {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, senderID, receiverID uuid.UUID) ([]uuid.UUID, error) {
	var flipped []uuid.UUID
	for i := range r.messages {
		m := &r.messages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			m.ReadAt = nullTime(time.Now().UTC())
			flipped = append(flipped, m.ID)
		}
	}
	return flipped, nil
}

func (r *fakeMessageRepo) UnreadCount(_ context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) LastMessage(_ context.Context, conversationKey string) (domain.Message, error) {
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ConversationKey == conversationKey {
			return r.messages[i], nil
		}
	}
	return domain.Message{}, chat_errors.ErrNotFound
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

type publishedEvent struct {
	channel string
	payload []byte
}

type fakeBroker struct {
	published []publishedEvent
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, channel string, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, publishedEvent{channel: channel, payload: payload})
	return nil
}

func testUser(email string) domain.User {
	return domain.User{ID: uuid.New(), ExternalID: "ext-" + email, Email: email}
}

func newMessageService(userRepo *fakeUserRepo, messageRepo *fakeMessageRepo, broker *fakeBroker) *MessageService {
	return NewMessageService(userRepo, messageRepo, broker, logger.New(logger.DevelopmentMode))
}

func TestSendRejectsEmptyBody(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	svc := newMessageService(newFakeUserRepo(alice, bob), newFakeMessageRepo(), &fakeBroker{})

	_, err := svc.Send(context.Background(), SendMessageInput{SenderID: alice.ID, ReceiverID: bob.ID})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
}

func TestSendRejectsSelfMessage(t *testing.T) {
	alice := testUser("alice@example.com")
	svc := newMessageService(newFakeUserRepo(alice), newFakeMessageRepo(), &fakeBroker{})

	_, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:   alice.ID,
		ReceiverID: alice.ID,
		Content:    "hi",
	})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
}

func TestSendUnknownReceiver(t *testing.T) {
	alice := testUser("alice@example.com")
	svc := newMessageService(newFakeUserRepo(alice), newFakeMessageRepo(), &fakeBroker{})

	_, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:   alice.ID,
		ReceiverID: uuid.New(),
		Content:    "hi",
	})
	assert.ErrorIs(t, err, chat_errors.ErrNotFound)
}

func TestSendPersistsAndPublishes(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	broker := &fakeBroker{}
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, broker)

	msg, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:   alice.ID,
		ReceiverID: bob.ID,
		Content:    "hello bob",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, events.ConversationKey(alice.ID, bob.ID), msg.ConversationKey)
	assert.False(t, msg.Read)

	require.Len(t, broker.published, 1)
	assert.Equal(t, events.ConversationChannel(alice.ID, bob.ID), broker.published[0].channel)

	var envelope events.Envelope
	require.NoError(t, json.Unmarshal(broker.published[0].payload, &envelope))
	assert.Equal(t, events.EventTypeMessageNew, envelope.EventType)

	var payload events.MessageNewPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, msg.ID, payload.ID)
	assert.Equal(t, "hello bob", payload.Content)
	assert.Equal(t, alice.ID, payload.Sender.ID)
}

func TestSendSucceedsWhenBrokerFails(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	broker := &fakeBroker{err: errors.New("redis down")}
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, broker)

	msg, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:   alice.ID,
		ReceiverID: bob.ID,
		Content:    "hello",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Len(t, repo.messages, 1)
}

func TestListReturnsPreMutationReadState(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, &fakeBroker{})

	_, err := svc.Send(context.Background(), SendMessageInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "one"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), SendMessageInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "two"})
	require.NoError(t, err)

	// The first fetch marks them read on the server but still reports
	// the state from before the fetch.
	first, err := svc.List(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, m := range first {
		assert.False(t, m.Read)
	}

	second, err := svc.List(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, m := range second {
		assert.True(t, m.Read)
	}
}

func TestListMarksOnlyInboundMessages(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, &fakeBroker{})

	_, err := svc.Send(context.Background(), SendMessageInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "out"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), SendMessageInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "in"})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	// Alice's own outbound message stays unread until Bob fetches.
	for _, m := range repo.messages {
		if m.SenderID == alice.ID {
			assert.False(t, m.Read)
		} else {
			assert.True(t, m.Read)
		}
	}
}

func TestListUnknownPeer(t *testing.T) {
	alice := testUser("alice@example.com")
	svc := newMessageService(newFakeUserRepo(alice), newFakeMessageRepo(), &fakeBroker{})

	_, err := svc.List(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, chat_errors.ErrNotFound)
}

func TestMarkReadPublishesReceiptToSender(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	broker := &fakeBroker{}
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, broker)

	sent, err := svc.Send(context.Background(), SendMessageInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "ping"})
	require.NoError(t, err)
	broker.published = nil

	count, err := svc.MarkRead(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The receipt goes to the message sender's user channel so their
	// client can flip local flags.
	require.Len(t, broker.published, 1)
	assert.Equal(t, events.UserChannel(bob.ID), broker.published[0].channel)

	var envelope events.Envelope
	require.NoError(t, json.Unmarshal(broker.published[0].payload, &envelope))
	assert.Equal(t, events.EventTypeMessageRead, envelope.EventType)

	var payload events.MessageReadPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, alice.ID, payload.ReaderID)
	assert.Equal(t, []uuid.UUID{sent.ID}, payload.MessageIDs)
}

func TestMarkReadNoopPublishesNothing(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	broker := &fakeBroker{}
	svc := newMessageService(newFakeUserRepo(alice, bob), newFakeMessageRepo(), broker)

	count, err := svc.MarkRead(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, broker.published)
}

func TestUnreadCountCountsInboundOnly(t *testing.T) {
	alice, bob := testUser("alice@example.com"), testUser("bob@example.com")
	repo := newFakeMessageRepo()
	svc := newMessageService(newFakeUserRepo(alice, bob), repo, &fakeBroker{})

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "hi"})
		require.NoError(t, err)
	}
	_, err := svc.Send(context.Background(), SendMessageInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi back"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
