package usecase

import (
	"context"
	"encoding/json"
	"time"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/pkg/logger"
	"foresight/pkg/util"
)

// WindowCycle drives the aggregation fan-out loop: on every wall-clock
// boundary it snapshots the subscription registry, aggregates raw ticks per
// subscription, applies the subscription's price selection and publishes
// the resulting records to its delivery queue. The loop alternates between
// aggregating and sleeping and only stops when the context is cancelled.
type WindowCycle struct {
	registry  drepo.SubscriptionRegistry
	ticks     drepo.TickStore
	transport drepo.QueueTransport
	metrics   drepo.Metrics
	logger    *logger.Logger
	cadence   time.Duration
}

// NewWindowCycle creates the scheduler.
func NewWindowCycle(
	registry drepo.SubscriptionRegistry,
	ticks drepo.TickStore,
	transport drepo.QueueTransport,
	metrics drepo.Metrics,
	lgr *logger.Logger,
	cadence time.Duration,
) *WindowCycle {
	if cadence <= 0 {
		cadence = time.Minute
	}
	return &WindowCycle{
		registry:  registry,
		ticks:     ticks,
		transport: transport,
		metrics:   metrics,
		logger:    lgr,
		cadence:   cadence,
	}
}

// Run loops forever: one cycle, then sleep until the next cadence boundary.
// The sleep is recomputed from the wall clock each time so the schedule
// does not drift. A failed cycle is logged and the loop continues.
func (w *WindowCycle) Run(ctx context.Context) error {
	for {
		delivered, err := w.RunCycle(ctx)
		if err != nil {
			w.logger.Error("window cycle failed, skipping to next boundary", logger.Error(err))
		} else {
			w.logger.Info("window cycle complete", logger.Int("delivered", delivered))
		}
		w.metrics.RecordCycleDelivered(delivered)

		wait := util.UntilNextBoundary(time.Now(), w.cadence)
		w.logger.Info("sleeping until next cycle", logger.Duration("wait_ms", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RunCycle executes a single aggregation pass over a fixed snapshot of the
// registry and returns how many messages were delivered. Registrations that
// land mid-cycle are picked up next cycle. A failure for one subscription
// never aborts the others; only a failure to fetch the snapshot itself
// abandons the cycle.
func (w *WindowCycle) RunCycle(ctx context.Context) (int, error) {
	start := time.Now()
	subs, err := w.registry.ListAll(ctx)
	if err != nil {
		w.metrics.RecordError("registry_list")
		return 0, err
	}

	delivered := 0
	for _, sub := range subs {
		delivered += w.processSubscription(ctx, sub)
	}
	w.metrics.RecordLatency("window_cycle", time.Since(start).Seconds())
	return delivered, nil
}

func (w *WindowCycle) processSubscription(ctx context.Context, sub models.Subscription) int {
	records, err := w.ticks.Aggregate(ctx, sub.Instrument, sub.Timescale)
	if err != nil {
		w.metrics.RecordError("aggregate")
		w.logger.Error("aggregation failed",
			logger.String("queue", sub.QueueURL),
			logger.String("instrument", sub.Instrument),
			logger.String("timescale", string(sub.Timescale)),
			logger.Error(err))
		return 0
	}

	converted := make([]models.PriceRecord, 0, len(records))
	for _, rec := range records {
		priced, err := rec.ConvertPrice(sub.Selection)
		if err != nil {
			w.metrics.RecordError("convert")
			w.logger.Error("price conversion failed",
				logger.String("queue", sub.QueueURL),
				logger.String("instrument", sub.Instrument),
				logger.String("selection", string(sub.Selection)),
				logger.Error(err))
			return 0
		}
		if priced.Price == nil {
			continue
		}
		converted = append(converted, priced)
	}

	// Nothing to say this cycle: no empty-batch messages.
	if len(converted) == 0 {
		return 0
	}

	w.logger.Info("publishing to queue",
		logger.String("queue", sub.QueueURL),
		logger.Int("records", len(converted)))

	sent := 0
	for _, rec := range converted {
		payload, err := json.Marshal(rec)
		if err != nil {
			w.metrics.RecordError("marshal")
			w.logger.Error("marshal record failed", logger.Error(err))
			continue
		}
		if err := w.transport.Send(ctx, sub.QueueURL, payload); err != nil {
			w.metrics.RecordError("queue_send")
			w.logger.Error("queue send failed",
				logger.String("queue", sub.QueueURL),
				logger.Error(err))
			continue
		}
		w.metrics.RecordMessageSent(sub.QueueURL, sub.Instrument)
		sent++
	}
	return sent
}
