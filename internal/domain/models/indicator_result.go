package models

import (
	"encoding/json"
	"time"
)

// IndicatorResult is one computed value for a component at an instant.
// (ComponentName, Time) is unique; uniqueness is enforced by the storage
// layer, not here. Rows are written once and never updated.
type IndicatorResult struct {
	ComponentName string          `json:"component_name"`
	Time          time.Time       `json:"time"`
	Value         json.RawMessage `json:"value"`
}

// NewIndicatorResult builds a result row. A zero t defaults to the creation
// instant.
func NewIndicatorResult(componentName string, t time.Time, value json.RawMessage) (IndicatorResult, error) {
	if componentName == "" {
		return IndicatorResult{}, newValidationError("indicator result", "component name is required")
	}
	if len(value) == 0 {
		return IndicatorResult{}, newValidationError("indicator result", "value is required")
	}
	if t.IsZero() {
		t = time.Now()
	}
	return IndicatorResult{ComponentName: componentName, Time: t.UTC(), Value: value}, nil
}
