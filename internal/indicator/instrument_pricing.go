package indicator

import (
	"encoding/json"
	"fmt"
	"time"

	"foresight/internal/domain/models"
	"foresight/pkg/util"
)

// InstrumentPricing republishes the accumulated price series unchanged,
// giving the presentation layer a raw view next to the derived signals.
type InstrumentPricing struct{}

// NewInstrumentPricing creates the passthrough pricing indicator.
func NewInstrumentPricing() *InstrumentPricing {
	return &InstrumentPricing{}
}

func (p *InstrumentPricing) Name() string { return "instrument_pricing" }

// PricePoint is one output row of the passthrough series.
type PricePoint struct {
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Price      float64   `json:"price"`
}

// Compute returns the batch as a JSON array with prices rounded to at most
// 5 decimals.
func (p *InstrumentPricing) Compute(points []models.PriceRecord) (json.RawMessage, error) {
	out := make([]PricePoint, 0, len(points))
	for i, pt := range points {
		if pt.Price == nil {
			return nil, fmt.Errorf("instrument pricing: point %d has no price", i)
		}
		out = append(out, PricePoint{
			Instrument: pt.Instrument,
			Time:       pt.Time,
			Price:      util.Round(*pt.Price, 5),
		})
	}
	return json.Marshal(out)
}
