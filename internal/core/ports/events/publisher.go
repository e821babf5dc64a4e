package events

import "context"

// EventPublisher delivers domain events to external observers.
// Delivery is fire-and-forget: the ledger mutation has already committed by
// the time Publish is called, so a failed publish is logged, never surfaced
// to the caller. Publish order matches mutation order.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
