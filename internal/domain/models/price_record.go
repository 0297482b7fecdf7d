package models

import (
	"fmt"
	"time"

	"foresight/pkg/util"
)

// mid prices round to 5 decimals; every outgoing price is additionally
// capped at 6 decimals before serialization. Both rules apply.
const (
	midPrecision    = 5
	outputPrecision = 6
)

// PriceRecord is one timestamped observation for an instrument. It carries
// either a raw bid/ask quote or a single derived price, never both forms at
// once. Records are immutable; applying a price selection produces a new
// record instead of mutating the original.
type PriceRecord struct {
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Bid        *float64  `json:"bid,omitempty"`
	Ask        *float64  `json:"ask,omitempty"`
	Price      *float64  `json:"price,omitempty"`
}

// NewQuote builds a bid/ask record, as produced by the tick source and by
// aggregation.
func NewQuote(instrument string, t time.Time, bid, ask float64) (PriceRecord, error) {
	if instrument == "" {
		return PriceRecord{}, newValidationError("price record", "instrument is required")
	}
	if t.IsZero() {
		return PriceRecord{}, newValidationError("price record", "time is required")
	}
	return PriceRecord{
		Instrument: instrument,
		Time:       t.UTC(),
		Bid:        &bid,
		Ask:        &ask,
	}, nil
}

// NewPrice builds a single-price record, the form delivered to consumers.
func NewPrice(instrument string, t time.Time, price float64) (PriceRecord, error) {
	if instrument == "" {
		return PriceRecord{}, newValidationError("price record", "instrument is required")
	}
	if t.IsZero() {
		return PriceRecord{}, newValidationError("price record", "time is required")
	}
	return PriceRecord{
		Instrument: instrument,
		Time:       t.UTC(),
		Price:      &price,
	}, nil
}

// Validate enforces the exactly-one-form invariant. Used on records that
// arrive from the wire rather than through a constructor.
func (r PriceRecord) Validate() error {
	if r.Instrument == "" {
		return newValidationError("price record", "instrument is required")
	}
	if r.Time.IsZero() {
		return newValidationError("price record", "time is required")
	}
	quote := r.Bid != nil && r.Ask != nil
	switch {
	case quote && r.Price != nil:
		return newValidationError("price record", "bid/ask and price are mutually exclusive")
	case !quote && r.Price == nil:
		return newValidationError("price record", "either bid and ask or price must be set")
	case (r.Bid == nil) != (r.Ask == nil):
		return newValidationError("price record", "bid and ask must both be set")
	}
	return nil
}

// ConvertPrice applies a price selection to a quote record and returns the
// derived single-price record. Mid prices round to 5 decimals, and every
// selected price is capped at 6 before it goes on the wire.
func (r PriceRecord) ConvertPrice(sel PriceSelection) (PriceRecord, error) {
	if r.Bid == nil || r.Ask == nil {
		return PriceRecord{}, newValidationError("price record", "conversion requires bid and ask")
	}

	var price float64
	switch sel {
	case SelectBid:
		price = *r.Bid
	case SelectAsk:
		price = *r.Ask
	case SelectMid:
		price = util.Round((*r.Bid+*r.Ask)/2, midPrecision)
	default:
		return PriceRecord{}, fmt.Errorf("%w: %q", ErrInvalidSelection, sel)
	}

	price = util.Round(price, outputPrecision)
	return PriceRecord{Instrument: r.Instrument, Time: r.Time, Price: &price}, nil
}
