//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/divebase/divebase/webhook"
	"github.com/divebase/divebase/webhook/redis"
)

/* Test Helpers for Redis Integration Tests
 * Following the pattern from: https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
 */

// RedisContainer holds the Redis testcontainer and connection details
type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

// SetupRedisContainer creates and starts a Redis testcontainer
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	// Strip the redis:// scheme, go-redis wants host:port
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	rc := &RedisContainer{
		Container: redisContainer,
		Addr:      addr,
	}

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return rc, cleanup
}

// CreateTestRepository creates a Redis repository connected to the test container
func CreateTestRepository(t *testing.T, addr string) *redis.Repository {
	t.Helper()

	repo, err := redis.NewRepository(addr, "", 0)
	require.NoError(t, err, "failed to create Redis repository")

	return repo
}

// SeedWebhook stores a webhook configuration for test deliveries
func SeedWebhook(t *testing.T, ctx context.Context, repo *redis.Repository, id string, active bool) webhook.Webhook {
	t.Helper()

	wh := webhook.Webhook{
		ID:             id,
		OrganizationID: "org-test",
		URL:            "https://example.com/hook",
		Secret:         "whsec_test",
		Events:         []string{"booking.*", "payment.received"},
		IsActive:       active,
		CreatedAt:      time.Now(),
	}

	_, err := repo.CreateWebhook(ctx, wh)
	require.NoError(t, err)

	return wh
}

// SeedDelivery stores a delivery in the given state
func SeedDelivery(t *testing.T, ctx context.Context, repo *redis.Repository, id, webhookID string, status webhook.Status, nextRetryAt, createdAt time.Time) webhook.Delivery {
	t.Helper()

	d := webhook.Delivery{
		ID:          id,
		WebhookID:   webhookID,
		Event:       "booking.created",
		Payload:     []byte(`{"booking_id":"bk_123"}`),
		Status:      status,
		Attempts:    0,
		MaxAttempts: webhook.DefaultMaxAttempts,
		NextRetryAt: nextRetryAt,
		CreatedAt:   createdAt,
	}
	if status.IsFinal() {
		completed := createdAt
		d.CompletedAt = &completed
	}

	_, err := repo.CreateDelivery(ctx, d)
	require.NoError(t, err)

	return d
}

// KeyExists checks if a Redis key exists
func KeyExists(t *testing.T, addr string, key string) bool {
	t.Helper()

	client := createRedisClient(addr)
	defer client.Close()

	exists, err := client.Exists(context.Background(), key).Result()
	require.NoError(t, err)

	return exists > 0
}

// ZSetContains checks if a sorted set contains a member
func ZSetContains(t *testing.T, addr, key, member string) bool {
	t.Helper()

	client := createRedisClient(addr)
	defer client.Close()

	_, err := client.ZScore(context.Background(), key, member).Result()
	if err == goredis.Nil {
		return false
	}
	require.NoError(t, err)

	return true
}

// createRedisClient creates a direct Redis client for testing helpers
func createRedisClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
}
