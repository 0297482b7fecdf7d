package indicator

import (
	"encoding/json"
	"fmt"
	"time"

	"foresight/internal/domain/models"
	"foresight/pkg/util"
)

const (
	fastWindow = 2
	slowWindow = 5
)

// MovingAverage computes dual rolling means over the delivered prices. A
// fast average crossing above the slow one reads as bullish, below as
// bearish; consumers of the persisted rows make that call.
type MovingAverage struct{}

// NewMovingAverage creates the dual moving average indicator.
func NewMovingAverage() *MovingAverage {
	return &MovingAverage{}
}

func (m *MovingAverage) Name() string { return "moving_average" }

// MovingAveragePoint is one output row: the input price annotated with both
// rolling means. Points without a complete slow window are dropped.
type MovingAveragePoint struct {
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Price      float64   `json:"price"`
	MAFast     float64   `json:"ma_fast"`
	MASlow     float64   `json:"ma_slow"`
}

// Compute returns the annotated points as a JSON array.
func (m *MovingAverage) Compute(points []models.PriceRecord) (json.RawMessage, error) {
	prices := make([]float64, len(points))
	for i, p := range points {
		if p.Price == nil {
			return nil, fmt.Errorf("moving average: point %d has no price", i)
		}
		prices[i] = *p.Price
	}

	// Start non-nil so a batch shorter than the slow window persists []
	// rather than null.
	out := make([]MovingAveragePoint, 0, len(points))
	for i := range points {
		if i < slowWindow-1 {
			continue
		}
		out = append(out, MovingAveragePoint{
			Instrument: points[i].Instrument,
			Time:       points[i].Time,
			Price:      prices[i],
			MAFast:     rollingMean(prices, i, fastWindow),
			MASlow:     rollingMean(prices, i, slowWindow),
		})
	}
	return json.Marshal(out)
}

// rollingMean averages the window ending at index i inclusive.
func rollingMean(prices []float64, i, window int) float64 {
	sum := 0.0
	for _, p := range prices[i-window+1 : i+1] {
		sum += p
	}
	return util.Round(sum/float64(window), 6)
}
