package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"foresight/internal/domain/models"
	"foresight/internal/domain/repository"
)

// interval expressions per timescale for toStartOfInterval. ClickHouse does
// the bucketed GROUP BY natively.
var bucketIntervals = map[models.Timescale]string{
	models.TimescaleSecond: "INTERVAL 1 SECOND",
	models.TimescaleMinute: "INTERVAL 1 MINUTE",
	models.TimescaleHour:   "INTERVAL 1 HOUR",
	models.TimescaleDay:    "INTERVAL 1 DAY",
}

// ClickHouseTickStore persists raw forex ticks and serves time-bucketed
// averages over them.
type ClickHouseTickStore struct {
	db       *sql.DB
	database string
}

// NewClickHouseTickStore creates the tick store over an existing pool.
func NewClickHouseTickStore(db *sql.DB, database string) repository.TickStore {
	return &ClickHouseTickStore{db: db, database: database}
}

func (s *ClickHouseTickStore) table() string {
	return s.database + ".forex_data"
}

// Init ensures the forex_data table exists. Idempotent.
func (s *ClickHouseTickStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			instrument LowCardinality(String),
			time DateTime64(6, 'UTC'),
			bid Float64,
			ask Float64
		) ENGINE = ReplacingMergeTree
		ORDER BY (instrument, time)`, s.table()),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init tick store: %w", err)
		}
	}
	return nil
}

// Insert writes a batch of quote records.
func (s *ClickHouseTickStore) Insert(ctx context.Context, records []models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*4)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if r.Bid == nil || r.Ask == nil {
			return fmt.Errorf("tick store accepts quote records only, got price record for %s", r.Instrument)
		}
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, r.Instrument, r.Time, *r.Bid, *r.Ask)
	}

	q := fmt.Sprintf("INSERT INTO %s (instrument, time, bid, ask) VALUES %s",
		s.table(), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("%w: insert ticks: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

// aggregateQuery builds the bucketed-mean statement for a timescale. Kept
// separate from the round trip so the generated SQL is testable without a
// live server.
func (s *ClickHouseTickStore) aggregateQuery(timescale models.Timescale) (string, error) {
	interval, ok := bucketIntervals[timescale]
	if !ok {
		return "", fmt.Errorf("no bucket interval for timescale %q", timescale)
	}
	return fmt.Sprintf(`SELECT
			instrument,
			toStartOfInterval(time, %s) AS bucket,
			avg(bid) AS bid,
			avg(ask) AS ask
		FROM %s
		WHERE instrument = ? AND time >= ?
		GROUP BY instrument, bucket
		ORDER BY bucket ASC`, interval, s.table()), nil
}

// Aggregate returns the arithmetic mean of bid and ask per non-empty bucket
// within the timescale's look-back window, ascending by bucket time. No
// rounding is applied here; that happens at price selection.
func (s *ClickHouseTickStore) Aggregate(ctx context.Context, instrument string, timescale models.Timescale) ([]models.PriceRecord, error) {
	q, err := s.aggregateQuery(timescale)
	if err != nil {
		return nil, models.NewAggregationError(instrument, timescale, err)
	}

	since := time.Now().UTC().Add(-timescale.Lookback())
	rows, err := s.db.QueryContext(ctx, q, instrument, since)
	if err != nil {
		return nil, models.NewAggregationError(instrument, timescale, err)
	}
	defer rows.Close()

	var out []models.PriceRecord
	for rows.Next() {
		var (
			inst     string
			bucket   time.Time
			bid, ask float64
		)
		if err := rows.Scan(&inst, &bucket, &bid, &ask); err != nil {
			return nil, models.NewAggregationError(instrument, timescale, err)
		}
		rec, err := models.NewQuote(inst, bucket, bid, ask)
		if err != nil {
			return nil, models.NewAggregationError(instrument, timescale, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewAggregationError(instrument, timescale, err)
	}
	return out, nil
}

func (s *ClickHouseTickStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTickStore) Close() error {
	return nil // pool is owned by pkg/clickhouse Client
}
