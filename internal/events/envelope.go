package events

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format for every pushed event.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in an Envelope stamped with the current time.
func NewEnvelope(eventType, aggregateType, aggregateID string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       data,
	}, nil
}

// Encode serializes the envelope for publishing.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
