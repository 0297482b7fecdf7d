package stream

import (
	"context"
	"math/rand"
	"time"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/pkg/util"
)

// RandomWalkSource emits synthetic ticks for one instrument: a
// multiplicative random walk on the bid with a fixed one-pip spread. Used
// in development and tests where no market feed is available.
type RandomWalkSource struct {
	instrument string
	interval   time.Duration
}

// NewRandomWalkSource creates the generator.
func NewRandomWalkSource(instrument string, interval time.Duration) *RandomWalkSource {
	return &RandomWalkSource{instrument: instrument, interval: interval}
}

func (s *RandomWalkSource) Name() string { return "randomwalk" }

// Run emits one tick per interval until ctx is cancelled.
func (s *RandomWalkSource) Run(ctx context.Context, out chan<- models.PriceRecord) error {
	price := 1.0

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			price = price * (1.0 + (rand.Float64()-0.5)*0.1)
			bid := util.Round(price, 5)
			rec, err := models.NewQuote(s.instrument, now, bid, bid+0.0001)
			if err != nil {
				return err
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

var _ drepo.TickSource = (*RandomWalkSource)(nil)
