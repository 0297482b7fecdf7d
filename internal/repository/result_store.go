package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"foresight/internal/domain/models"
	"foresight/internal/domain/repository"
)

// ClickHouseResultStore persists indicator outputs. (component_name, time)
// is the sorting key of a ReplacingMergeTree, so a duplicate write for the
// same instant collapses to one row instead of failing.
type ClickHouseResultStore struct {
	db       *sql.DB
	database string
}

// NewClickHouseResultStore creates the result store over an existing pool.
func NewClickHouseResultStore(db *sql.DB, database string) repository.ResultStore {
	return &ClickHouseResultStore{db: db, database: database}
}

func (s *ClickHouseResultStore) table() string {
	return s.database + ".indicator_results"
}

// Init ensures the indicator_results table exists. Idempotent.
func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			component_name LowCardinality(String),
			time DateTime64(6, 'UTC'),
			value String
		) ENGINE = ReplacingMergeTree
		ORDER BY (component_name, time)`, s.table()),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init result store: %w", err)
		}
	}
	return nil
}

// Save writes one result row.
func (s *ClickHouseResultStore) Save(ctx context.Context, result models.IndicatorResult) error {
	q := fmt.Sprintf("INSERT INTO %s (component_name, time, value) VALUES (?, ?, ?)", s.table())
	_, err := s.db.ExecContext(ctx, q, result.ComponentName, result.Time, string(result.Value))
	if err != nil {
		return fmt.Errorf("%w: save result %s: %v", models.ErrStorageUnavailable, result.ComponentName, err)
	}
	return nil
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Latest returns the newest row per component name.
func (s *ClickHouseResultStore) Latest(ctx context.Context) ([]models.IndicatorResult, error) {
	q := fmt.Sprintf(`SELECT component_name, time, value
		FROM %s
		ORDER BY time DESC
		LIMIT 1 BY component_name`, s.table())
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: latest results: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []models.IndicatorResult
	for rows.Next() {
		var (
			name  string
			t     time.Time
			value string
		)
		if err := rows.Scan(&name, &t, &value); err != nil {
			return nil, fmt.Errorf("%w: scan result: %v", models.ErrStorageUnavailable, err)
		}
		out = append(out, models.IndicatorResult{
			ComponentName: name,
			Time:          t,
			Value:         json.RawMessage(value),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: latest results: %v", models.ErrStorageUnavailable, err)
	}
	return out, nil
}
