package models

import (
	"errors"
	"testing"
	"time"
)

func mustQuote(t *testing.T, bid, ask float64) PriceRecord {
	t.Helper()
	rec, err := NewQuote("EUR_USD", time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC), bid, ask)
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}
	return rec
}

func TestValidateQuote(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid quote rejected: %v", err)
	}
}

func TestValidatePrice(t *testing.T) {
	rec, err := NewPrice("EUR_USD", time.Now(), 1.15)
	if err != nil {
		t.Fatalf("NewPrice: %v", err)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid price rejected: %v", err)
	}
}

func TestValidateRejectsBothForms(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	p := 1.15
	rec.Price = &p
	if err := rec.Validate(); err == nil {
		t.Fatal("record with quote and price accepted")
	}
}

func TestValidateRejectsNeitherForm(t *testing.T) {
	rec := PriceRecord{Instrument: "EUR_USD", Time: time.Now()}
	if err := rec.Validate(); err == nil {
		t.Fatal("record with no price form accepted")
	}
}

func TestValidateRejectsHalfQuote(t *testing.T) {
	bid := 1.1
	rec := PriceRecord{Instrument: "EUR_USD", Time: time.Now(), Bid: &bid}
	if err := rec.Validate(); err == nil {
		t.Fatal("record with only bid accepted")
	}
}

func TestConvertPriceBid(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	got, err := rec.ConvertPrice(SelectBid)
	if err != nil {
		t.Fatalf("ConvertPrice: %v", err)
	}
	if got.Price == nil || *got.Price != 1.1 {
		t.Fatalf("unexpected price %v", got.Price)
	}
	if got.Bid != nil || got.Ask != nil {
		t.Fatal("converted record still carries bid/ask")
	}
}

func TestConvertPriceAsk(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	got, err := rec.ConvertPrice(SelectAsk)
	if err != nil {
		t.Fatalf("ConvertPrice: %v", err)
	}
	if got.Price == nil || *got.Price != 1.2 {
		t.Fatalf("unexpected price %v", got.Price)
	}
}

func TestConvertPriceMidRoundsToFive(t *testing.T) {
	// (1.11111 + 1.11115) / 2 = 1.1111300000000002 before rounding
	rec := mustQuote(t, 1.11111, 1.11115)
	got, err := rec.ConvertPrice(SelectMid)
	if err != nil {
		t.Fatalf("ConvertPrice: %v", err)
	}
	if got.Price == nil || *got.Price != 1.11113 {
		t.Fatalf("unexpected mid %v", got.Price)
	}
}

func TestConvertPriceCapsOutputAtSix(t *testing.T) {
	rec := mustQuote(t, 1.12345678, 1.2)
	got, err := rec.ConvertPrice(SelectBid)
	if err != nil {
		t.Fatalf("ConvertPrice: %v", err)
	}
	if got.Price == nil || *got.Price != 1.123457 {
		t.Fatalf("unexpected price %v", got.Price)
	}
}

func TestConvertPriceUnknownSelection(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	_, err := rec.ConvertPrice(PriceSelection("vwap"))
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestConvertPriceRequiresQuote(t *testing.T) {
	rec, _ := NewPrice("EUR_USD", time.Now(), 1.15)
	if _, err := rec.ConvertPrice(SelectBid); err == nil {
		t.Fatal("conversion of a priced record accepted")
	}
}

func TestConvertPriceDoesNotMutateOriginal(t *testing.T) {
	rec := mustQuote(t, 1.1, 1.2)
	if _, err := rec.ConvertPrice(SelectMid); err != nil {
		t.Fatalf("ConvertPrice: %v", err)
	}
	if rec.Price != nil {
		t.Fatal("original record mutated")
	}
	if rec.Bid == nil || *rec.Bid != 1.1 {
		t.Fatal("original bid changed")
	}
}
