package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"foresight/internal/domain/models"
	"foresight/internal/indicator"
	"foresight/pkg/logger"
)

func newTestLoop(t *testing.T, transport *fakeTransport, results *fakeResultStore, maxBatch int) *IndicatorLoop {
	t.Helper()
	loop := NewIndicatorLoop(
		indicator.NewInstrumentPricing(),
		newFakeRegistry(),
		transport,
		results,
		nopMetrics{},
		logger.Nop(),
		"EUR_USD",
		models.TimescaleMinute,
		models.SelectBid,
		time.Second,
		maxBatch,
	)
	if err := loop.Register(context.Background()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return loop
}

func enqueuePrice(t *testing.T, transport *fakeTransport, queueURL string, ts time.Time, price float64) {
	t.Helper()
	rec, err := models.NewPrice("EUR_USD", ts, price)
	if err != nil {
		t.Fatalf("NewPrice: %v", err)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := transport.Send(context.Background(), queueURL, payload); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestQueueName(t *testing.T) {
	got := QueueName("moving_average", "EUR_USD")
	want := "moving_average_eur_usd_indicator_queue"
	if got != want {
		t.Fatalf("QueueName = %q, want %q", got, want)
	}
}

func TestRegisterUpsertsSubscription(t *testing.T) {
	transport := newFakeTransport()
	registry := newFakeRegistry()
	loop := NewIndicatorLoop(
		indicator.NewMovingAverage(), registry, transport, &fakeResultStore{},
		nopMetrics{}, logger.Nop(),
		"EUR_USD", models.TimescaleMinute, models.SelectMid, time.Second, 10,
	)

	if err := loop.Register(context.Background()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A restart with different parameters lands on the same queue and
	// supersedes the row instead of adding one.
	restarted := NewIndicatorLoop(
		indicator.NewMovingAverage(), registry, transport, &fakeResultStore{},
		nopMetrics{}, logger.Nop(),
		"EUR_USD", models.TimescaleMinute, models.SelectBid, time.Second, 10,
	)
	if err := restarted.Register(context.Background()); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	subs, err := registry.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("registry has %d rows, want 1", len(subs))
	}
	want := "fake:" + QueueName("moving_average", "EUR_USD")
	if subs[0].QueueURL != want {
		t.Fatalf("queue url = %q, want %q", subs[0].QueueURL, want)
	}
	if subs[0].Selection != models.SelectBid {
		t.Fatalf("selection = %q, want superseding value %q", subs[0].Selection, models.SelectBid)
	}
}

func TestRunOnceDrainsAndSorts(t *testing.T) {
	transport := newFakeTransport()
	results := &fakeResultStore{}
	loop := newTestLoop(t, transport, results, 100)

	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	// Delivered out of order: the loop must sort by time before compute.
	enqueuePrice(t, transport, loop.queueURL, base.Add(2*time.Minute), 1.3)
	enqueuePrice(t, transport, loop.queueURL, base, 1.1)
	enqueuePrice(t, transport, loop.queueURL, base.Add(time.Minute), 1.2)

	wrote, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !wrote {
		t.Fatal("expected a result row")
	}
	if len(results.saved) != 1 {
		t.Fatalf("saved %d rows, want 1", len(results.saved))
	}

	var points []indicator.PricePoint
	if err := json.Unmarshal(results.saved[0].Value, &points); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("result has %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			t.Fatalf("points not sorted by time: %v before %v", points[i].Time, points[i-1].Time)
		}
	}

	// The queue must be drained.
	if depth, _ := transport.ApproximateCount(context.Background(), loop.queueURL); depth != 0 {
		t.Fatalf("queue depth = %d after drain, want 0", depth)
	}
}

func TestRunOnceEmptyPollWritesNothing(t *testing.T) {
	transport := newFakeTransport()
	results := &fakeResultStore{}
	loop := newTestLoop(t, transport, results, 100)

	wrote, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if wrote {
		t.Fatal("empty poll wrote a result")
	}
	if len(results.saved) != 0 {
		t.Fatalf("saved %d rows, want 0", len(results.saved))
	}
}

func TestRunOnceSkipsMalformedMessages(t *testing.T) {
	transport := newFakeTransport()
	results := &fakeResultStore{}
	loop := newTestLoop(t, transport, results, 100)

	_ = transport.Send(context.Background(), loop.queueURL, []byte("{not json"))
	enqueuePrice(t, transport, loop.queueURL, time.Now(), 1.5)

	wrote, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !wrote {
		t.Fatal("expected a result from the valid message")
	}

	var points []indicator.PricePoint
	if err := json.Unmarshal(results.saved[0].Value, &points); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("result has %d points, want 1", len(points))
	}
}

func TestRunOnceRespectsMaxBatch(t *testing.T) {
	transport := newFakeTransport()
	results := &fakeResultStore{}
	loop := newTestLoop(t, transport, results, 2)

	base := time.Now()
	for i := 0; i < 5; i++ {
		enqueuePrice(t, transport, loop.queueURL, base.Add(time.Duration(i)*time.Second), 1.0+float64(i))
	}

	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if depth, _ := transport.ApproximateCount(context.Background(), loop.queueURL); depth != 3 {
		t.Fatalf("queue depth = %d, want 3 left after batch of 2", depth)
	}
}

func TestRunRequiresRegister(t *testing.T) {
	loop := NewIndicatorLoop(
		indicator.NewMovingAverage(), newFakeRegistry(), newFakeTransport(), &fakeResultStore{},
		nopMetrics{}, logger.Nop(),
		"EUR_USD", models.TimescaleMinute, models.SelectMid, time.Second, 10,
	)
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("Run without Register accepted")
	}
}
