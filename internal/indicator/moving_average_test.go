package indicator

import (
	"encoding/json"
	"testing"
	"time"

	"foresight/internal/domain/models"
)

func pricePoints(t *testing.T, prices ...float64) []models.PriceRecord {
	t.Helper()
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	out := make([]models.PriceRecord, 0, len(prices))
	for i, p := range prices {
		rec, err := models.NewPrice("EUR_USD", base.Add(time.Duration(i)*time.Minute), p)
		if err != nil {
			t.Fatalf("NewPrice: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestMovingAverageCompute(t *testing.T) {
	ma := NewMovingAverage()
	raw, err := ma.Compute(pricePoints(t, 1, 2, 3, 4, 5, 6))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var out []MovingAveragePoint
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// 6 inputs minus 4 warm-up rows for the slow window of 5.
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2", len(out))
	}

	// At index 4: fast = mean(4,5) = 4.5, slow = mean(1..5) = 3.
	if out[0].MAFast != 4.5 || out[0].MASlow != 3 {
		t.Fatalf("point 0: fast=%v slow=%v, want 4.5/3", out[0].MAFast, out[0].MASlow)
	}
	// At index 5: fast = mean(5,6) = 5.5, slow = mean(2..6) = 4.
	if out[1].MAFast != 5.5 || out[1].MASlow != 4 {
		t.Fatalf("point 1: fast=%v slow=%v, want 5.5/4", out[1].MAFast, out[1].MASlow)
	}
	if out[0].Price != 5 || out[1].Price != 6 {
		t.Fatalf("unexpected prices %v %v", out[0].Price, out[1].Price)
	}
}

func TestMovingAverageShortSeries(t *testing.T) {
	ma := NewMovingAverage()
	raw, err := ma.Compute(pricePoints(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Below the slow window the persisted value must be an empty array,
	// not null, so readers always see a list.
	if string(raw) != "[]" {
		t.Fatalf("short series serialized as %s, want []", raw)
	}
}

func TestMovingAverageRejectsMissingPrice(t *testing.T) {
	ma := NewMovingAverage()
	rec, err := models.NewQuote("EUR_USD", time.Now(), 1.1, 1.2)
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}
	if _, err := ma.Compute([]models.PriceRecord{rec}); err == nil {
		t.Fatal("quote record accepted")
	}
}

func TestInstrumentPricingPassthrough(t *testing.T) {
	p := NewInstrumentPricing()
	raw, err := p.Compute(pricePoints(t, 1.123456789, 2.5))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	var out []PricePoint
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2", len(out))
	}
	if out[0].Price != 1.12346 {
		t.Fatalf("price not rounded to 5: %v", out[0].Price)
	}
	if out[1].Price != 2.5 {
		t.Fatalf("price changed: %v", out[1].Price)
	}
}
