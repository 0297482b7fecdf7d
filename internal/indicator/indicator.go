// Package indicator holds the derived-signal computations fed by the
// window service. An Indicator is a pure function from an accumulated
// price batch to a serialized result; polling and persistence live in the
// consumption loop, so implementations stay trivially testable.
package indicator

import (
	"encoding/json"

	"foresight/internal/domain/models"
)

// Indicator computes one derived value from a batch of single-price
// records. Implementations must tolerate duplicate and missing points: the
// delivery fabric is at-least-once and unordered, and the loop sorts the
// batch by time before calling Compute.
type Indicator interface {
	Name() string
	Compute(points []models.PriceRecord) (json.RawMessage, error)
}
