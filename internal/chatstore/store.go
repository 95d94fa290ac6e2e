// Package chatstore is the client-side conversation state used by Go
// consumers of the chat API, such as bots and the terminal client. It
// merges fetched history with pushed events and tracks unread counts and
// typing indicators per peer.
package chatstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pairchat/internal/domain"
)

// LoadState tracks history fetching per conversation. A conversation is
// Empty until a fetch starts, Loading while the request is in flight,
// and Loaded afterwards. Pushed messages are accepted in every state.
type LoadState int

const (
	LoadEmpty LoadState = iota
	LoadLoading
	LoadLoaded
)

// DefaultTypingTTL is how long a typing indicator stays visible without
// a refresh. Lost stop events self-heal through this expiry.
const DefaultTypingTTL = 3 * time.Second

type conversation struct {
	state    LoadState
	messages []domain.Message
	byID     map[uuid.UUID]int
	unread   int

	typing      bool
	typingName  string
	typingTimer *time.Timer
	typingGen   uint64
}

// Store holds per-peer conversation state for one authenticated session.
// Construct one per session; it is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	selfID        uuid.UUID
	typingTTL     time.Duration
	conversations map[uuid.UUID]*conversation
	openPeer      uuid.UUID
	hasOpen       bool
}

// Option configures a Store.
type Option func(*Store)

// WithTypingTTL overrides the typing indicator expiry.
func WithTypingTTL(ttl time.Duration) Option {
	return func(s *Store) { s.typingTTL = ttl }
}

func New(selfID uuid.UUID, opts ...Option) *Store {
	s := &Store{
		selfID:        selfID,
		typingTTL:     DefaultTypingTTL,
		conversations: make(map[uuid.UUID]*conversation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) conv(peerID uuid.UUID) *conversation {
	c, ok := s.conversations[peerID]
	if !ok {
		c = &conversation{byID: make(map[uuid.UUID]int)}
		s.conversations[peerID] = c
	}
	return c
}

// State returns the load state for a peer's conversation.
func (s *Store) State(peerID uuid.UUID) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[peerID]; ok {
		return c.state
	}
	return LoadEmpty
}

// BeginLoad marks a history fetch as in flight.
func (s *Store) BeginLoad(peerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conv(peerID)
	if c.state == LoadEmpty {
		c.state = LoadLoading
	}
}

// FinishLoad merges fetched history into the conversation and marks it
// Loaded. Messages pushed while the fetch was in flight are kept; the
// merge dedupes by id.
func (s *Store) FinishLoad(peerID uuid.UUID, history []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conv(peerID)
	for i := range history {
		s.insertLocked(c, history[i])
	}
	c.state = LoadLoaded
}

// FailLoad returns the conversation to Empty so the fetch can be retried.
func (s *Store) FailLoad(peerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conv(peerID)
	if c.state == LoadLoading {
		c.state = LoadEmpty
	}
}

// ApplyMessage merges one message, fetched or pushed, into the peer's
// conversation. Duplicate ids update in place. When the message is
// inbound and the conversation is not open, the unread counter grows.
func (s *Store) ApplyMessage(peerID uuid.UUID, msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(peerID)
	_, seen := c.byID[msg.ID]
	s.insertLocked(c, msg)

	inbound := msg.SenderID == peerID
	if inbound && !seen && !(s.hasOpen && s.openPeer == peerID) {
		c.unread++
	}

	// A real message supersedes the typing indicator.
	if inbound {
		s.clearTypingLocked(c)
	}
}

// insertLocked places msg in created-at order, replacing any existing
// copy with the same id. Pushed events can arrive out of order.
func (s *Store) insertLocked(c *conversation, msg domain.Message) {
	if idx, ok := c.byID[msg.ID]; ok {
		c.messages[idx] = msg
		return
	}

	pos := sort.Search(len(c.messages), func(i int) bool {
		return c.messages[i].CreatedAt.After(msg.CreatedAt)
	})
	c.messages = append(c.messages, domain.Message{})
	copy(c.messages[pos+1:], c.messages[pos:])
	c.messages[pos] = msg

	for i := pos; i < len(c.messages); i++ {
		c.byID[c.messages[i].ID] = i
	}
}

// Messages returns a copy of the peer's conversation in ascending
// created-at order.
func (s *Store) Messages(peerID uuid.UUID) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[peerID]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Open marks a peer's conversation as the one on screen and resets its
// unread counter. Messages arriving for the open conversation do not
// count as unread.
func (s *Store) Open(peerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openPeer = peerID
	s.hasOpen = true
	s.conv(peerID).unread = 0
}

// Close clears the open conversation.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasOpen = false
	s.openPeer = uuid.Nil
}

// Unread returns the unread counter for a peer.
func (s *Store) Unread(peerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[peerID]; ok {
		return c.unread
	}
	return 0
}

// ApplyReadReceipt flips the read flag on our own messages the peer has
// acknowledged.
func (s *Store) ApplyReadReceipt(peerID uuid.UUID, messageIDs []uuid.UUID, readAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[peerID]
	if !ok {
		return
	}
	for _, id := range messageIDs {
		idx, ok := c.byID[id]
		if !ok {
			continue
		}
		if c.messages[idx].SenderID != s.selfID {
			continue
		}
		c.messages[idx].Read = true
		c.messages[idx].ReadAt.Time = readAt
		c.messages[idx].ReadAt.Valid = true
	}
}

// SetTyping records a typing indicator from the peer. A true flag arms
// an expiry timer so the indicator clears itself if no stop event or
// refresh arrives within the TTL.
func (s *Store) SetTyping(peerID uuid.UUID, displayName string, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(peerID)
	if !isTyping {
		s.clearTypingLocked(c)
		return
	}

	c.typing = true
	c.typingName = displayName
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	// Stop does not guarantee a fired callback has not already started;
	// the generation check keeps a stale callback from clearing a
	// freshly armed indicator.
	c.typingGen++
	gen := c.typingGen
	c.typingTimer = time.AfterFunc(s.typingTTL, func() {
		s.expireTyping(c, gen)
	})
}

func (s *Store) expireTyping(c *conversation, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.typingGen != gen {
		return
	}
	s.clearTypingLocked(c)
}

func (s *Store) clearTypingLocked(c *conversation) {
	c.typing = false
	c.typingName = ""
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
}

// Typing reports whether the peer is currently typing and under what
// display name.
func (s *Store) Typing(peerID uuid.UUID) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[peerID]; ok {
		return c.typing, c.typingName
	}
	return false, ""
}
