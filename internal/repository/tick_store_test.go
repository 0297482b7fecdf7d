package repository

import (
	"strings"
	"testing"

	"foresight/internal/domain/models"
)

func TestAggregateQueryPerTimescale(t *testing.T) {
	store := &ClickHouseTickStore{database: "foresight"}

	cases := []struct {
		timescale models.Timescale
		interval  string
	}{
		{models.TimescaleSecond, "INTERVAL 1 SECOND"},
		{models.TimescaleMinute, "INTERVAL 1 MINUTE"},
		{models.TimescaleHour, "INTERVAL 1 HOUR"},
		{models.TimescaleDay, "INTERVAL 1 DAY"},
	}
	for _, tc := range cases {
		q, err := store.aggregateQuery(tc.timescale)
		if err != nil {
			t.Fatalf("aggregateQuery(%s): %v", tc.timescale, err)
		}
		if !strings.Contains(q, "toStartOfInterval(time, "+tc.interval+")") {
			t.Fatalf("timescale %s: query buckets with the wrong interval:\n%s", tc.timescale, q)
		}
		if !strings.Contains(q, "avg(bid)") || !strings.Contains(q, "avg(ask)") {
			t.Fatalf("timescale %s: query does not average both quote sides:\n%s", tc.timescale, q)
		}
		if !strings.Contains(q, "GROUP BY instrument, bucket") {
			t.Fatalf("timescale %s: query missing per-bucket grouping:\n%s", tc.timescale, q)
		}
		if !strings.Contains(q, "ORDER BY bucket ASC") {
			t.Fatalf("timescale %s: buckets not returned in ascending order:\n%s", tc.timescale, q)
		}
		if !strings.Contains(q, "foresight.forex_data") {
			t.Fatalf("timescale %s: query targets the wrong table:\n%s", tc.timescale, q)
		}
	}
}

func TestAggregateQueryUnknownTimescale(t *testing.T) {
	store := &ClickHouseTickStore{database: "foresight"}
	if _, err := store.aggregateQuery(models.Timescale("X")); err == nil {
		t.Fatal("unknown timescale accepted")
	}
}
