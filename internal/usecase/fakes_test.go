package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"foresight/internal/domain/models"
)

// fakeRegistry is an in-memory SubscriptionRegistry.
type fakeRegistry struct {
	mu      sync.Mutex
	subs    map[string]models.Subscription
	listErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{subs: make(map[string]models.Subscription)}
}

func (r *fakeRegistry) Init(ctx context.Context) error { return nil }

func (r *fakeRegistry) RegisterOrUpdate(ctx context.Context, sub models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.QueueURL] = sub
	return nil
}

func (r *fakeRegistry) ListAll(ctx context.Context) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	return out, nil
}

// fakeTickStore serves canned aggregation results per instrument.
type fakeTickStore struct {
	aggregates map[string][]models.PriceRecord
	aggErr     map[string]error
}

func newFakeTickStore() *fakeTickStore {
	return &fakeTickStore{
		aggregates: make(map[string][]models.PriceRecord),
		aggErr:     make(map[string]error),
	}
}

func (s *fakeTickStore) Init(ctx context.Context) error { return nil }

func (s *fakeTickStore) Insert(ctx context.Context, records []models.PriceRecord) error {
	return nil
}

func (s *fakeTickStore) Aggregate(ctx context.Context, instrument string, timescale models.Timescale) ([]models.PriceRecord, error) {
	if err := s.aggErr[instrument]; err != nil {
		return nil, models.NewAggregationError(instrument, timescale, err)
	}
	return s.aggregates[instrument], nil
}

func (s *fakeTickStore) Health(ctx context.Context) error { return nil }
func (s *fakeTickStore) Close() error                     { return nil }

// fakeTransport is an in-memory QueueTransport backed by per-queue slices.
type fakeTransport struct {
	mu      sync.Mutex
	queues  map[string][][]byte
	sendErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{queues: make(map[string][][]byte)}
}

func (t *fakeTransport) CreateOrGetQueue(ctx context.Context, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	url := "fake:" + name
	if _, ok := t.queues[url]; !ok {
		t.queues[url] = nil
	}
	return url, nil
}

func (t *fakeTransport) Send(ctx context.Context, queueURL string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.queues[queueURL] = append(t.queues[queueURL], payload)
	return nil
}

func (t *fakeTransport) Receive(ctx context.Context, queueURL string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q := t.queues[queueURL]
	if len(q) == 0 {
		return nil, false, nil
	}
	payload := q[0]
	t.queues[queueURL] = q[1:]
	return payload, true, nil
}

func (t *fakeTransport) ApproximateCount(ctx context.Context, queueURL string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.queues[queueURL])), nil
}

func (t *fakeTransport) messages(queueURL string) [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.queues[queueURL]...)
}

// fakeResultStore records saved indicator results.
type fakeResultStore struct {
	mu      sync.Mutex
	saved   []models.IndicatorResult
	saveErr error
}

func (s *fakeResultStore) Init(ctx context.Context) error   { return nil }
func (s *fakeResultStore) Health(ctx context.Context) error { return nil }

func (s *fakeResultStore) Save(ctx context.Context, result models.IndicatorResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, result)
	return nil
}

func (s *fakeResultStore) Latest(ctx context.Context) ([]models.IndicatorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[string]models.IndicatorResult)
	for _, r := range s.saved {
		if cur, ok := latest[r.ComponentName]; !ok || r.Time.After(cur.Time) {
			latest[r.ComponentName] = r
		}
	}
	out := make([]models.IndicatorResult, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	return out, nil
}

// nopMetrics discards all recordings.
type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(queue, instrument string)   {}
func (nopMetrics) RecordError(kind string)                      {}
func (nopMetrics) RecordLastPrice(instrument string, p float64) {}
func (nopMetrics) RecordLatency(op string, seconds float64)     {}
func (nopMetrics) RecordCycleDelivered(count int)               {}

var errBoom = errors.New("boom")

func mustSub(queueURL, instrument string) models.Subscription {
	sub, err := models.NewSubscription(queueURL, instrument, models.TimescaleMinute, models.SelectBid)
	if err != nil {
		panic(fmt.Sprintf("mustSub: %v", err))
	}
	return sub
}
