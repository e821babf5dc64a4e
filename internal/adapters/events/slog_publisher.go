package events

import (
	"context"
	"encoding/json"
	"log/slog"

	portsevents "github.com/tallyfin/tally/internal/core/ports/events"
)

// SlogPublisher writes events to the structured log. It is the default sink
// for deployments without a broker; subscribers tail the log instead.
type SlogPublisher struct {
	logger *slog.Logger
}

// NewSlogPublisher creates a publisher over the given logger.
func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	return &SlogPublisher{logger: logger}
}

// Ensure SlogPublisher implements the EventPublisher interface
var _ portsevents.EventPublisher = (*SlogPublisher)(nil)

func (p *SlogPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.Info("Ledger event",
		slog.String("topic", topic),
		slog.String("event", string(data)),
	)
	return nil
}
