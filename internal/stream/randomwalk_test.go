package stream

import (
	"context"
	"testing"
	"time"

	"foresight/internal/domain/models"
)

func TestRandomWalkEmitsValidQuotes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewRandomWalkSource("EUR_USD", time.Millisecond)
	out := make(chan models.PriceRecord, 8)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, out) }()

	for i := 0; i < 5; i++ {
		select {
		case rec := <-out:
			if err := rec.Validate(); err != nil {
				t.Fatalf("tick %d invalid: %v", i, err)
			}
			if rec.Instrument != "EUR_USD" {
				t.Fatalf("tick %d instrument = %q", i, rec.Instrument)
			}
			if *rec.Ask <= *rec.Bid {
				t.Fatalf("tick %d ask %v not above bid %v", i, *rec.Ask, *rec.Bid)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for tick")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
