package util

import (
	"testing"
	"time"
)

func TestRound(t *testing.T) {
	cases := []struct {
		x      float64
		places int
		want   float64
	}{
		{1.123456789, 5, 1.12346},
		{1.123456789, 6, 1.123457},
		{1.5, 0, 2},
		{-1.5, 0, -2},
		{2.5, 1, 2.5},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := Round(c.x, c.places); got != c.want {
			t.Errorf("Round(%v, %d) = %v, want %v", c.x, c.places, got, c.want)
		}
	}
}

func TestUntilNextBoundary(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 15, 0, time.UTC)
	got := UntilNextBoundary(now, time.Minute)
	if got != 45*time.Second {
		t.Fatalf("UntilNextBoundary = %v, want 45s", got)
	}
}

func TestUntilNextBoundaryOnBoundary(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	got := UntilNextBoundary(now, time.Minute)
	if got != time.Minute {
		t.Fatalf("UntilNextBoundary at boundary = %v, want 1m", got)
	}
}

func TestUntilNextBoundarySubSecond(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 15, int(300*time.Millisecond), time.UTC)
	got := UntilNextBoundary(now, time.Second)
	if got != 700*time.Millisecond {
		t.Fatalf("UntilNextBoundary = %v, want 700ms", got)
	}
}
