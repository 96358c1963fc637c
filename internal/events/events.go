// Package events publishes item lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// Event types. They double as routing keys.
const (
	ItemSubmitted     = "lostfound.item.submitted"
	ItemApproved      = "lostfound.item.approved"
	ItemDeleted       = "lostfound.item.deleted"
	ItemReturned      = "lostfound.item.returned"
	ItemImageAttached = "lostfound.item.image_attached"
	ClaimSubmitted    = "lostfound.claim.submitted"
	ClaimApproved     = "lostfound.claim.approved"
	ClaimRejected     = "lostfound.claim.rejected"
)

// Event describes one committed workflow transition.
type Event struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	ItemID     string           `json:"itemId"`
	ClaimID    string           `json:"claimId,omitempty"`
	ActorID    string           `json:"actorId"`
	Status     model.ItemStatus `json:"status,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// New creates an event with a fresh ID and the current time.
func New(typ, itemID string, actor model.Identity, status model.ItemStatus) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		ItemID:     itemID,
		ActorID:    actor.ID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

const publishTimeout = 5 * time.Second

// Publisher sends encoded events to a broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Emit encodes and publishes an event. Failures are logged and swallowed
// since the transition the event describes has already been committed.
// Publishing outlives the caller's cancellation.
func Emit(ctx context.Context, pub Publisher, ev Event) {
	if pub == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, ev.Type, payload); err != nil {
		slog.Warn("failed to publish event", "type", ev.Type, "item", ev.ItemID, "error", err)
	}
}

// LogPublisher writes events to the structured log. It is the default when
// no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event", "routing_key", routingKey, "payload", string(payload))
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error {
	return nil
}
