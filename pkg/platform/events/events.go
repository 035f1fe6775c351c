// Package events carries domain events out of the lead and dedup services.
// Services depend on the Publisher interface; cmd/server picks Kafka when
// brokers are configured and the logging publisher otherwise.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadhub/pkg/requestcontext"
)

// Type names an event on the wire.
type Type string

const (
	TypeLeadUpserted         Type = "lead.upserted"
	TypeLeadDeleted          Type = "lead.deleted"
	TypeDedupCompleted       Type = "dedup.completed"
	TypeProductsConsolidated Type = "products.consolidated"
	TypeUploadCompleted      Type = "upload.completed"
)

// Event is transport-agnostic. Key partitions related events together, for
// leads it is the lead id.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Key       string         `json:"key,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"requestId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// New builds an event stamped with the request id and time from ctx.
func New(ctx context.Context, typ Type, key string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Key:       key,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Payload:   payload,
	}
}

// Publisher emits events. Emit failures are reported to the caller, which
// decides whether they matter; the lead and dedup services only log them.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}
