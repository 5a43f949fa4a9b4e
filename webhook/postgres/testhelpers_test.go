//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/divebase/divebase/webhook"
)

/*
Test helpers for PostgreSQL with testcontainers.

A real postgres container is started per test and terminated in cleanup.
Requires Docker. To share containers across tests:

  export TESTCONTAINERS_REUSE_ENABLE=true
  go test -tags=integration ./webhook/postgres/...
*/

const (
	defaultDatabase = "testdb"
	defaultUser     = "testuser"
	defaultPassword = "testpass"
)

// PostgresContainer bundles the container with an open connection
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgresContainer starts a real PostgreSQL container
func SetupPostgresContainer(t *testing.T, ctx context.Context) (*PostgresContainer, func()) {
	t.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(defaultDatabase),
		postgres.WithUsername(defaultUser),
		postgres.WithPassword(defaultPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	container := &PostgresContainer{
		Container: pgContainer,
		DB:        db,
		ConnStr:   connStr,
	}

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return container, cleanup
}

// CreateTestRepository opens a repository against the container and runs
// the schema migration
func CreateTestRepository(t *testing.T, ctx context.Context, connStr string) *Repository {
	t.Helper()

	repo, err := NewRepository(connStr)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))

	return repo
}

// SeedWebhook inserts a webhook configuration for test deliveries
func SeedWebhook(t *testing.T, ctx context.Context, repo *Repository, id string, active bool) webhook.Webhook {
	t.Helper()

	wh := webhook.Webhook{
		ID:             id,
		OrganizationID: "org-test",
		URL:            "https://example.com/hook",
		Secret:         "whsec_test",
		Events:         []string{"booking.*", "payment.received"},
		IsActive:       active,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := repo.CreateWebhook(ctx, wh)
	require.NoError(t, err)

	return wh
}

// SeedDelivery inserts a delivery row in the given state
func SeedDelivery(t *testing.T, ctx context.Context, repo *Repository, id, webhookID string, status webhook.Status, nextRetryAt, createdAt time.Time) webhook.Delivery {
	t.Helper()

	d := webhook.Delivery{
		ID:          id,
		WebhookID:   webhookID,
		Event:       "booking.created",
		Payload:     []byte(`{"booking_id":"bk_123"}`),
		Status:      status,
		Attempts:    0,
		MaxAttempts: webhook.DefaultMaxAttempts,
		NextRetryAt: nextRetryAt.UTC().Truncate(time.Microsecond),
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
	if status.IsFinal() {
		completed := createdAt.UTC().Truncate(time.Microsecond)
		d.CompletedAt = &completed
	}

	_, err := repo.CreateDelivery(ctx, d)
	require.NoError(t, err)

	return d
}

// AssertDeliveryCount verifies the number of delivery rows
func AssertDeliveryCount(t *testing.T, ctx context.Context, db *sql.DB, expected int) {
	t.Helper()

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhook_deliveries").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}
