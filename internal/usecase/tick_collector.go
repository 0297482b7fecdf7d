package usecase

import (
	"context"
	"time"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	pkgkafka "foresight/pkg/kafka"
	"foresight/pkg/logger"
)

// TickCollector pumps records from a tick source into the tick store,
// batching writes to cut round-trips. Optionally mirrors every tick onto a
// Kafka topic for downstream consumers outside this pipeline. The source
// loop is never-fatal: a source error is logged and the source restarted.
type TickCollector struct {
	source  drepo.TickSource
	store   drepo.TickStore
	metrics drepo.Metrics
	logger  *logger.Logger

	mirror      *pkgkafka.Producer
	mirrorTopic string

	batchSize    int
	flushEvery   time.Duration
	restartDelay time.Duration
}

// CollectorOption configures TickCollector.
type CollectorOption func(*TickCollector)

// WithMirror mirrors ingested ticks onto a Kafka topic.
func WithMirror(producer *pkgkafka.Producer, topic string) CollectorOption {
	return func(c *TickCollector) {
		c.mirror = producer
		c.mirrorTopic = topic
	}
}

// WithBatch sets batch size and flush interval for store writes.
func WithBatch(size int, flushEvery time.Duration) CollectorOption {
	return func(c *TickCollector) {
		if size > 0 {
			c.batchSize = size
		}
		if flushEvery > 0 {
			c.flushEvery = flushEvery
		}
	}
}

// NewTickCollector creates the collector.
func NewTickCollector(source drepo.TickSource, store drepo.TickStore, metrics drepo.Metrics, lgr *logger.Logger, opts ...CollectorOption) *TickCollector {
	c := &TickCollector{
		source:       source,
		store:        store,
		metrics:      metrics,
		logger:       lgr,
		batchSize:    100,
		flushEvery:   2 * time.Second,
		restartDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ingests until ctx is cancelled.
func (c *TickCollector) Run(ctx context.Context) error {
	out := make(chan models.PriceRecord, 1024)

	go func() {
		for {
			err := c.source.Run(ctx, out)
			if ctx.Err() != nil {
				return
			}
			c.metrics.RecordError("stream_source")
			c.logger.Error("tick source stopped, restarting",
				logger.String("source", c.source.Name()),
				logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.restartDelay):
			}
		}
	}()

	batch := make([]models.PriceRecord, 0, c.batchSize)
	flush := time.NewTicker(c.flushEvery)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flushBatch(context.WithoutCancel(ctx), batch)
			return ctx.Err()
		case rec := <-out:
			if rec.Bid != nil {
				c.metrics.RecordLastPrice(rec.Instrument, *rec.Bid)
			}
			batch = append(batch, rec)
			if len(batch) >= c.batchSize {
				c.flushBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-flush.C:
			if len(batch) > 0 {
				c.flushBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (c *TickCollector) flushBatch(ctx context.Context, batch []models.PriceRecord) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	if err := c.store.Insert(ctx, batch); err != nil {
		c.metrics.RecordError("tick_insert")
		c.logger.Error("tick batch insert failed",
			logger.Int("records", len(batch)),
			logger.Error(err))
		return
	}
	c.metrics.RecordLatency("tick_insert", time.Since(start).Seconds())
	c.logger.Debug("tick batch stored", logger.Int("records", len(batch)))

	if c.mirror != nil {
		msgs := make([]pkgkafka.Message, len(batch))
		for i, rec := range batch {
			msgs[i] = pkgkafka.Message{Key: []byte(rec.Instrument), Value: rec}
		}
		if err := c.mirror.PublishBatch(ctx, c.mirrorTopic, msgs); err != nil {
			c.metrics.RecordError("tick_mirror")
			c.logger.Warn("tick mirror publish failed", logger.Error(err))
		}
	}
}
