package repository

import (
	"context"
	"database/sql"
	"fmt"

	"foresight/internal/domain/models"
	"foresight/internal/domain/repository"
)

// ClickHouseSubscriptionRegistry stores the queue-to-parameters mapping in
// a ReplacingMergeTree keyed by queue_url. An insert for an existing queue
// supersedes the prior row once merged; reads use FINAL so the last write
// always wins regardless of merge timing. That gives the insert-or-update
// contract without client-side locking.
type ClickHouseSubscriptionRegistry struct {
	db       *sql.DB
	database string
}

// NewClickHouseSubscriptionRegistry creates the registry over an existing pool.
func NewClickHouseSubscriptionRegistry(db *sql.DB, database string) repository.SubscriptionRegistry {
	return &ClickHouseSubscriptionRegistry{db: db, database: database}
}

func (r *ClickHouseSubscriptionRegistry) table() string {
	return r.database + ".subscription_feed"
}

// Init ensures the subscription_feed table exists. Idempotent.
func (r *ClickHouseSubscriptionRegistry) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", r.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			queue_url String,
			instrument LowCardinality(String),
			timescale LowCardinality(String),
			order_type LowCardinality(String),
			updated_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY queue_url`, r.table()),
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init subscription registry: %w", err)
		}
	}
	return nil
}

// RegisterOrUpdate upserts the subscription row for its queue URL. Calling
// it again with different parameters silently replaces them.
func (r *ClickHouseSubscriptionRegistry) RegisterOrUpdate(ctx context.Context, sub models.Subscription) error {
	q := fmt.Sprintf(`INSERT INTO %s (queue_url, instrument, timescale, order_type)
		VALUES (?, ?, ?, ?)`, r.table())
	_, err := r.db.ExecContext(ctx, q,
		sub.QueueURL, sub.Instrument, string(sub.Timescale), string(sub.Selection))
	if err != nil {
		return fmt.Errorf("%w: register subscription %s: %v", models.ErrStorageUnavailable, sub.QueueURL, err)
	}
	return nil
}

// ListAll returns every registered subscription.
func (r *ClickHouseSubscriptionRegistry) ListAll(ctx context.Context) ([]models.Subscription, error) {
	q := fmt.Sprintf("SELECT queue_url, instrument, timescale, order_type FROM %s FINAL", r.table())
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var queueURL, instrument, timescale, orderType string
		if err := rows.Scan(&queueURL, &instrument, &timescale, &orderType); err != nil {
			return nil, fmt.Errorf("%w: scan subscription: %v", models.ErrStorageUnavailable, err)
		}
		subs = append(subs, models.Subscription{
			QueueURL:   queueURL,
			Instrument: instrument,
			Timescale:  models.Timescale(timescale),
			Selection:  models.PriceSelection(orderType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", models.ErrStorageUnavailable, err)
	}
	return subs, nil
}
