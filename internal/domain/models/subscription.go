package models

import (
	"fmt"
	"time"
)

// Timescale selects the bucket width used when aggregating raw ticks and
// the look-back window fetched for it.
type Timescale string

const (
	TimescaleSecond Timescale = "S"
	TimescaleMinute Timescale = "M"
	TimescaleHour   Timescale = "H"
	TimescaleDay    Timescale = "D"
)

// timescaleSpec pins a Timescale to its bucket width and look-back window.
// The table is a configuration constant shared by the window scheduler and
// every indicator so bucketing stays deterministic across services.
type timescaleSpec struct {
	bucket   time.Duration
	lookback time.Duration
}

var timescales = map[Timescale]timescaleSpec{
	TimescaleSecond: {bucket: time.Second, lookback: 15 * time.Minute},
	TimescaleMinute: {bucket: time.Minute, lookback: 24 * time.Hour},
	TimescaleHour:   {bucket: time.Hour, lookback: 14 * 24 * time.Hour},
	TimescaleDay:    {bucket: 24 * time.Hour, lookback: 365 * 24 * time.Hour},
}

// ParseTimescale validates s as one of S, M, H, D.
func ParseTimescale(s string) (Timescale, error) {
	ts := Timescale(s)
	if _, ok := timescales[ts]; !ok {
		return "", newValidationError("timescale", fmt.Sprintf("unknown value %q", s))
	}
	return ts, nil
}

// Bucket returns the aggregation bucket width.
func (t Timescale) Bucket() time.Duration {
	return timescales[t].bucket
}

// Lookback returns how far back raw ticks are fetched.
func (t Timescale) Lookback() time.Duration {
	return timescales[t].lookback
}

// Valid reports whether the timescale is a known value.
func (t Timescale) Valid() bool {
	_, ok := timescales[t]
	return ok
}

// PriceSelection chooses which scalar price a subscription receives.
type PriceSelection string

const (
	SelectBid PriceSelection = "bid"
	SelectAsk PriceSelection = "ask"
	SelectMid PriceSelection = "mid"
)

// ParsePriceSelection validates s as bid, ask or mid.
func ParsePriceSelection(s string) (PriceSelection, error) {
	switch PriceSelection(s) {
	case SelectBid, SelectAsk, SelectMid:
		return PriceSelection(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelection, s)
}

// Subscription maps a delivery queue to the aggregation parameters its
// consumer asked for. QueueURL is the primary key: re-registering the same
// queue replaces the previous parameters instead of adding a row.
type Subscription struct {
	QueueURL   string         `json:"queue_url"`
	Instrument string         `json:"instrument"`
	Timescale  Timescale      `json:"timescale"`
	Selection  PriceSelection `json:"order_type"`
}

// NewSubscription validates and builds a Subscription.
func NewSubscription(queueURL, instrument string, timescale Timescale, selection PriceSelection) (Subscription, error) {
	if queueURL == "" {
		return Subscription{}, newValidationError("subscription", "queue url is required")
	}
	if instrument == "" {
		return Subscription{}, newValidationError("subscription", "instrument is required")
	}
	if !timescale.Valid() {
		return Subscription{}, newValidationError("subscription", fmt.Sprintf("unknown timescale %q", timescale))
	}
	if _, err := ParsePriceSelection(string(selection)); err != nil {
		return Subscription{}, newValidationError("subscription", fmt.Sprintf("unknown selection %q", selection))
	}
	return Subscription{
		QueueURL:   queueURL,
		Instrument: instrument,
		Timescale:  timescale,
		Selection:  selection,
	}, nil
}
