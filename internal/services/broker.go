package services

import "context"

// Broker is the realtime fan-out port. Delivery is best-effort: services
// log publish failures and carry on, persistence stays the source of
// truth and clients reconcile over REST.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
