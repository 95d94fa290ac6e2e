package events

// Event type constants, format: domain.action
const (
	EventTypeMessageNew      = "message.new"
	EventTypeMessageRead     = "message.read"
	EventTypeTyping          = "typing"
	EventTypePresenceChanged = "presence.changed"
)

// Aggregate type constants
const (
	AggregateTypeMessage  = "message"
	AggregateTypeReceipt  = "message_receipt"
	AggregateTypeTyping   = "typing"
	AggregateTypePresence = "presence"
)
