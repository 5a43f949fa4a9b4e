package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/divebase/divebase/webhook"
)

/* PostgreSQL implementation of webhook.Repository
 *
 * Uses plain database/sql with the lib/pq driver. Placeholders are $1, $2...
 * Subscribed events are stored as a TEXT[] column and scanned through
 * pq.StringArray.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository opens a PostgreSQL connection pool (25 open, 5 idle, 5 min lifetime)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig opens a PostgreSQL connection pool with custom settings.
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: maximum idle connections kept in the pool
// maxLifeMinutes: maximum minutes a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

// Migrate creates the webhook tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS webhooks (
			id TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT NOT NULL,
			events TEXT[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_delivery_at TIMESTAMPTZ,
			last_delivery_status TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id TEXT PRIMARY KEY,
			webhook_id TEXT NOT NULL,
			event TEXT NOT NULL,
			payload JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			max_attempts INT NOT NULL DEFAULT 5,
			next_retry_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			response_code INT NOT NULL DEFAULT 0,
			response_body TEXT NOT NULL DEFAULT '',
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_due
			ON webhook_deliveries (next_retry_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_webhook_id
			ON webhook_deliveries (webhook_id)`,
	}

	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	return nil
}

const deliveryColumns = `id, webhook_id, event, payload, status, attempts, max_attempts,
	next_retry_at, response_code, response_body, completed_at, created_at`

// GetDelivery fetches a delivery by ID
func (r *Repository) GetDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	query := fmt.Sprintf("SELECT %s FROM webhook_deliveries WHERE id = $1", deliveryColumns)

	d, err := scanDelivery(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Delivery{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("selecting delivery: %w", err)
	}

	return d, nil
}

// ListDue returns pending deliveries whose retry time has been reached,
// oldest-due first
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]webhook.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhook_deliveries
		WHERE status = 'pending' AND next_retry_at <= $1
		ORDER BY next_retry_at ASC, created_at ASC
		LIMIT $2`, deliveryColumns)

	rows, err := r.DB.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting due deliveries: %w", err)
	}
	defer rows.Close()

	var due []webhook.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		due = append(due, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due deliveries: %w", err)
	}

	return due, nil
}

// DeliveryStats aggregates delivery counts by status for a webhook
func (r *Repository) DeliveryStats(ctx context.Context, webhookID string) (webhook.DeliveryStats, error) {
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'success'),
		COUNT(*) FILTER (WHERE status = 'failed'),
		COUNT(*) FILTER (WHERE status = 'pending')
		FROM webhook_deliveries WHERE webhook_id = $1`

	var stats webhook.DeliveryStats
	err := r.DB.QueryRowContext(ctx, query, webhookID).Scan(
		&stats.Total,
		&stats.Success,
		&stats.Failed,
		&stats.Pending,
	)
	if err != nil {
		return webhook.DeliveryStats{}, fmt.Errorf("aggregating delivery stats: %w", err)
	}

	return stats, nil
}

// CreateDelivery inserts a new delivery row
func (r *Repository) CreateDelivery(ctx context.Context, d webhook.Delivery) (string, error) {
	query := `INSERT INTO webhook_deliveries
		(id, webhook_id, event, payload, status, attempts, max_attempts, next_retry_at,
		 response_code, response_body, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		d.ID,
		d.WebhookID,
		d.Event,
		[]byte(d.Payload),
		d.Status.String(),
		d.Attempts,
		d.MaxAttempts,
		d.NextRetryAt,
		d.ResponseCode,
		d.ResponseBody,
		nullableTime(d.CompletedAt),
		d.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting delivery: %w", err)
	}

	return d.ID, nil
}

/* UpdateDelivery persists all mutable fields in a single UPDATE so a
 * concurrent reader never observes a partial write. Transitions into a
 * terminal state only apply to rows still pending, which guards against
 * double-delivery if two workers ever pick up the same id.
 */
func (r *Repository) UpdateDelivery(ctx context.Context, d webhook.Delivery) error {
	query := `UPDATE webhook_deliveries SET
		status = $2,
		attempts = $3,
		next_retry_at = $4,
		response_code = $5,
		response_body = $6,
		completed_at = $7
		WHERE id = $1 AND (status = 'pending' OR $2 = 'pending')`

	result, err := r.DB.ExecContext(ctx, query,
		d.ID,
		d.Status.String(),
		d.Attempts,
		d.NextRetryAt,
		d.ResponseCode,
		d.ResponseBody,
		nullableTime(d.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("updating delivery: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return webhook.ErrNotFound
	}

	return nil
}

// DeleteDeliveriesBefore removes deliveries created strictly before the cutoff
func (r *Repository) DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		"DELETE FROM webhook_deliveries WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old deliveries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking affected rows: %w", err)
	}

	return removed, nil
}

// GetWebhook fetches a webhook configuration by ID
func (r *Repository) GetWebhook(ctx context.Context, id string) (webhook.Webhook, error) {
	query := `SELECT id, organization_id, url, secret, events, is_active,
		last_delivery_at, last_delivery_status, created_at
		FROM webhooks WHERE id = $1`

	var (
		wh             webhook.Webhook
		events         pq.StringArray
		lastDeliveryAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&wh.ID,
		&wh.OrganizationID,
		&wh.URL,
		&wh.Secret,
		&events,
		&wh.IsActive,
		&lastDeliveryAt,
		&wh.LastDeliveryStatus,
		&wh.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Webhook{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("selecting webhook: %w", err)
	}

	wh.Events = events
	if lastDeliveryAt.Valid {
		t := lastDeliveryAt.Time
		wh.LastDeliveryAt = &t
	}

	return wh, nil
}

// CreateWebhook inserts a new webhook configuration
func (r *Repository) CreateWebhook(ctx context.Context, wh webhook.Webhook) (string, error) {
	query := `INSERT INTO webhooks
		(id, organization_id, url, secret, events, is_active, last_delivery_at,
		 last_delivery_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctx, query,
		wh.ID,
		wh.OrganizationID,
		wh.URL,
		wh.Secret,
		pq.StringArray(wh.Events),
		wh.IsActive,
		nullableTime(wh.LastDeliveryAt),
		wh.LastDeliveryStatus,
		wh.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting webhook: %w", err)
	}

	return wh.ID, nil
}

// RecordDeliveryResult stamps the webhook's last-delivery state
func (r *Repository) RecordDeliveryResult(ctx context.Context, webhookID, status string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE webhooks SET last_delivery_at = $2, last_delivery_status = $3 WHERE id = $1",
		webhookID, at, status)
	if err != nil {
		return fmt.Errorf("updating webhook delivery state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return webhook.ErrNotFound
	}

	return nil
}

// GlobalDeliveryStats returns delivery counts grouped by status across all
// webhooks, feeding the metrics collector
func (r *Repository) GlobalDeliveryStats(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM webhook_deliveries GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("aggregating global stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	return counts, nil
}

// CountDue returns the number of pending deliveries due at or before now
func (r *Repository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM webhook_deliveries WHERE status = 'pending' AND next_retry_at <= $1",
		now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting due deliveries: %w", err)
	}

	return count, nil
}

// Close closes the connection pool
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDelivery(row scanner) (webhook.Delivery, error) {
	var (
		d           webhook.Delivery
		payload     []byte
		status      string
		completedAt sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.WebhookID,
		&d.Event,
		&payload,
		&status,
		&d.Attempts,
		&d.MaxAttempts,
		&d.NextRetryAt,
		&d.ResponseCode,
		&d.ResponseBody,
		&completedAt,
		&d.CreatedAt,
	)
	if err != nil {
		return webhook.Delivery{}, err
	}

	d.Payload = payload
	d.Status = webhook.NewStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		d.CompletedAt = &t
	}

	return d, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
