package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/internal/indicator"
	"foresight/pkg/logger"
)

// IndicatorLoop hosts one indicator: it registers a subscription pointing
// at its own delivery queue, then polls that queue on a fixed interval,
// accumulates the delivered price points, computes the indicator value and
// persists it. The poll interval is independent of the window cadence; the
// two loops are not phase-locked.
type IndicatorLoop struct {
	ind       indicator.Indicator
	registry  drepo.SubscriptionRegistry
	transport drepo.QueueTransport
	results   drepo.ResultStore
	metrics   drepo.Metrics
	logger    *logger.Logger

	instrument   string
	timescale    models.Timescale
	selection    models.PriceSelection
	pollInterval time.Duration
	maxBatch     int

	queueURL string
}

// NewIndicatorLoop creates the consumption loop for one indicator.
func NewIndicatorLoop(
	ind indicator.Indicator,
	registry drepo.SubscriptionRegistry,
	transport drepo.QueueTransport,
	results drepo.ResultStore,
	metrics drepo.Metrics,
	lgr *logger.Logger,
	instrument string,
	timescale models.Timescale,
	selection models.PriceSelection,
	pollInterval time.Duration,
	maxBatch int,
) *IndicatorLoop {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &IndicatorLoop{
		ind:          ind,
		registry:     registry,
		transport:    transport,
		results:      results,
		metrics:      metrics,
		logger:       lgr,
		instrument:   instrument,
		timescale:    timescale,
		selection:    selection,
		pollInterval: pollInterval,
		maxBatch:     maxBatch,
	}
}

// QueueName returns the delivery queue name for a component and instrument.
// The name is stable so a restarted process lands on the same queue.
func QueueName(component, instrument string) string {
	return fmt.Sprintf("%s_%s_indicator_queue", component, strings.ToLower(instrument))
}

// Register creates (or reuses) the delivery queue and upserts the
// subscription pointing at it. Re-entrant: re-running with the same
// component and instrument resolves to the same queue and supersedes the
// registry row. A failure here is a startup failure and terminates the
// process.
func (l *IndicatorLoop) Register(ctx context.Context) error {
	url, err := l.transport.CreateOrGetQueue(ctx, QueueName(l.ind.Name(), l.instrument))
	if err != nil {
		return fmt.Errorf("%w: create queue: %v", models.ErrQueueUnavailable, err)
	}
	l.queueURL = url

	sub, err := models.NewSubscription(url, l.instrument, l.timescale, l.selection)
	if err != nil {
		return err
	}
	if err := l.registry.RegisterOrUpdate(ctx, sub); err != nil {
		return err
	}

	l.logger.Info("indicator registered",
		logger.String("component", l.ind.Name()),
		logger.String("instrument", l.instrument),
		logger.String("timescale", string(l.timescale)),
		logger.String("queue", url))
	return nil
}

// Run polls forever on the configured interval. Recoverable poll, compute
// and persist failures are logged; only context cancellation ends the loop.
func (l *IndicatorLoop) Run(ctx context.Context) error {
	if l.queueURL == "" {
		return fmt.Errorf("indicator %s: Run called before Register", l.ind.Name())
	}
	for {
		if _, err := l.RunOnce(ctx); err != nil {
			l.metrics.RecordError("indicator_cycle")
			l.logger.Error("indicator cycle failed",
				logger.String("component", l.ind.Name()),
				logger.String("instrument", l.instrument),
				logger.String("timescale", string(l.timescale)),
				logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
}

// RunOnce performs one poll-compute-persist pass and reports whether a
// result row was written. An empty poll writes nothing.
func (l *IndicatorLoop) RunOnce(ctx context.Context) (bool, error) {
	points, err := l.poll(ctx)
	if err != nil {
		return false, err
	}
	if len(points) == 0 {
		return false, nil
	}

	value, err := l.ind.Compute(points)
	if err != nil {
		return false, fmt.Errorf("compute %s: %w", l.ind.Name(), err)
	}

	result, err := models.NewIndicatorResult(l.ind.Name(), time.Now(), value)
	if err != nil {
		return false, err
	}
	if err := l.results.Save(ctx, result); err != nil {
		return false, err
	}

	l.logger.Info("indicator result saved",
		logger.String("component", l.ind.Name()),
		logger.Int("points", len(points)))
	return true, nil
}

// poll drains the delivery queue up to maxBatch messages, accumulating the
// price points of this pass. The queue gives no ordering guarantee, so the
// batch is sorted by time before compute. Malformed payloads are logged
// and skipped; the indicator must already tolerate gaps.
func (l *IndicatorLoop) poll(ctx context.Context) ([]models.PriceRecord, error) {
	if depth, err := l.transport.ApproximateCount(ctx, l.queueURL); err == nil {
		l.logger.Debug("queue depth", logger.String("queue", l.queueURL), logger.Int64("messages", depth))
	}

	var points []models.PriceRecord
	for len(points) < l.maxBatch {
		payload, ok, err := l.transport.Receive(ctx, l.queueURL)
		if err != nil {
			return points, fmt.Errorf("%w: receive: %v", models.ErrQueueUnavailable, err)
		}
		if !ok {
			break
		}

		var rec models.PriceRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			l.metrics.RecordError("indicator_unmarshal")
			l.logger.Warn("dropping malformed message", logger.Error(err))
			continue
		}
		if err := rec.Validate(); err != nil {
			l.metrics.RecordError("indicator_validate")
			l.logger.Warn("dropping invalid record", logger.Error(err))
			continue
		}
		points = append(points, rec)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}
