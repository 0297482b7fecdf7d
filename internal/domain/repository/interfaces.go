package repository

import (
	"context"

	"foresight/internal/domain/models"
)

// TickStore persists raw ticks and serves time-bucketed aggregation. The
// backing engine is expected to support bucketed GROUP BY natively; the
// core issues one aggregation query and never retries it.
type TickStore interface {
	Init(ctx context.Context) error // ensure tables, idempotent
	Insert(ctx context.Context, records []models.PriceRecord) error
	// Aggregate returns one averaged quote per non-empty bucket, ascending
	// by time. Buckets with no raw ticks produce no record.
	Aggregate(ctx context.Context, instrument string, timescale models.Timescale) ([]models.PriceRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// SubscriptionRegistry is the durable queue-to-parameters mapping. The
// queue URL is the primary key; RegisterOrUpdate silently supersedes an
// existing row for the same queue.
type SubscriptionRegistry interface {
	Init(ctx context.Context) error
	RegisterOrUpdate(ctx context.Context, sub models.Subscription) error
	// ListAll returns every registered subscription in no significant
	// order. A store failure surfaces as models.ErrStorageUnavailable.
	ListAll(ctx context.Context) ([]models.Subscription, error)
}

// ResultStore persists indicator outputs, one row per evaluation, unique on
// (component_name, time).
type ResultStore interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, result models.IndicatorResult) error
	// Latest returns the newest row per component name.
	Latest(ctx context.Context) ([]models.IndicatorResult, error)
	Health(ctx context.Context) error
}

// QueueTransport is the at-least-once delivery fabric between the window
// scheduler and indicator consumers. No ordering guarantee, no batching
// across messages.
type QueueTransport interface {
	CreateOrGetQueue(ctx context.Context, name string) (string, error)
	Send(ctx context.Context, queueURL string, payload []byte) error
	// Receive pops a single message with delete-on-receipt semantics. A
	// crash between receive and processing loses the message for this
	// consumer; duplicates may also occur. ok is false when the queue is
	// empty.
	Receive(ctx context.Context, queueURL string) (payload []byte, ok bool, err error)
	ApproximateCount(ctx context.Context, queueURL string) (int64, error)
}

// TickSource produces raw price records until ctx is cancelled. Adapters
// exist for a synthetic random walk, a websocket stream, and a Kafka topic.
type TickSource interface {
	Name() string
	Run(ctx context.Context, out chan<- models.PriceRecord) error
}

// Metrics records operational counters for all services.
type Metrics interface {
	RecordMessageSent(queue, instrument string)
	RecordError(kind string)
	RecordLastPrice(instrument string, price float64)
	RecordLatency(op string, seconds float64)
	RecordCycleDelivered(count int)
}
