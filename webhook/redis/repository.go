package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/divebase/divebase/webhook"
)

/* Redis implementation of webhook.Repository
 *
 * Uses Redis Hashes for delivery and webhook records, a sorted set scored by
 * next_retry_at as the due index, and a second sorted set scored by
 * created_at for retention sweeps. Only pending deliveries live in the due
 * index; terminal transitions remove them.
 */

const (
	deliveryPrefix  = "delivery"              // Hash naming: delivery:{delivery_id}
	webhookPrefix   = "webhookcfg"            // Hash naming: webhookcfg:{webhook_id}
	dueIndexKey     = "deliveries:due"        // ZSET member=delivery_id score=next_retry_at
	createdIndexKey = "deliveries:created"    // ZSET member=delivery_id score=created_at millis
	byWebhookPrefix = "webhookcfg:deliveries" // SET naming: webhookcfg:deliveries:{webhook_id}
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// NewRepositoryWithClient wraps an existing client (used by tests)
func NewRepositoryWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// GetDelivery retrieves a delivery by ID from its hash
func (r *Repository) GetDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	data, err := r.client.HGetAll(ctx, deliveryKey(id)).Result()
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if len(data) == 0 {
		return webhook.Delivery{}, webhook.ErrNotFound
	}

	return deliveryFromHash(data), nil
}

// ListDue returns up to limit pending deliveries due at or before now,
// oldest-due first
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]webhook.Delivery, error) {
	ids, err := r.client.ZRangeByScore(ctx, dueIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("querying due index: %w", err)
	}

	var due []webhook.Delivery
	for _, id := range ids {
		d, err := r.GetDelivery(ctx, id)
		if err == webhook.ErrNotFound {
			// Index entry outlived the hash; drop it
			r.client.ZRem(ctx, dueIndexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		due = append(due, d)
	}

	return due, nil
}

// DeliveryStats aggregates delivery counts by status for a webhook
func (r *Repository) DeliveryStats(ctx context.Context, webhookID string) (webhook.DeliveryStats, error) {
	ids, err := r.client.SMembers(ctx, byWebhookKey(webhookID)).Result()
	if err != nil {
		return webhook.DeliveryStats{}, fmt.Errorf("listing webhook deliveries: %w", err)
	}

	var stats webhook.DeliveryStats
	for _, id := range ids {
		status, err := r.client.HGet(ctx, deliveryKey(id), "status").Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return webhook.DeliveryStats{}, fmt.Errorf("getting delivery status: %w", err)
		}

		stats.Total++
		switch webhook.NewStatus(status) {
		case webhook.Success:
			stats.Success++
		case webhook.Failed:
			stats.Failed++
		case webhook.Pending:
			stats.Pending++
		}
	}

	return stats, nil
}

// CreateDelivery stores a new delivery and indexes it
func (r *Repository) CreateDelivery(ctx context.Context, d webhook.Delivery) (string, error) {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, deliveryKey(d.ID), deliveryToHash(d))
	pipe.ZAdd(ctx, createdIndexKey, redis.Z{Score: float64(d.CreatedAt.UnixMilli()), Member: d.ID})
	pipe.SAdd(ctx, byWebhookKey(d.WebhookID), d.ID)
	if d.Status == webhook.Pending {
		pipe.ZAdd(ctx, dueIndexKey, redis.Z{Score: float64(d.NextRetryAt.Unix()), Member: d.ID})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing delivery: %w", err)
	}

	return d.ID, nil
}

/* UpdateDelivery rewrites the delivery hash and maintains the due index in
 * one transactional pipeline, so readers never observe a partial update.
 */
func (r *Repository) UpdateDelivery(ctx context.Context, d webhook.Delivery) error {
	exists, err := r.client.Exists(ctx, deliveryKey(d.ID)).Result()
	if err != nil {
		return fmt.Errorf("checking delivery: %w", err)
	}
	if exists == 0 {
		return webhook.ErrNotFound
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, deliveryKey(d.ID), deliveryToHash(d))
	if d.Status == webhook.Pending {
		pipe.ZAdd(ctx, dueIndexKey, redis.Z{Score: float64(d.NextRetryAt.Unix()), Member: d.ID})
	} else {
		pipe.ZRem(ctx, dueIndexKey, d.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating delivery: %w", err)
	}

	return nil
}

// DeleteDeliveriesBefore removes deliveries created strictly before the cutoff
func (r *Repository) DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// Exclusive max keeps "strictly older": a delivery created exactly at the
	// cutoff is retained. Scores are milliseconds.
	max := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)

	ids, err := r.client.ZRangeByScore(ctx, createdIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("querying created index: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var removed int64
	for _, id := range ids {
		webhookID, err := r.client.HGet(ctx, deliveryKey(id), "webhook_id").Result()
		if err != nil && err != redis.Nil {
			return removed, fmt.Errorf("getting delivery owner: %w", err)
		}

		pipe := r.client.TxPipeline()
		pipe.Del(ctx, deliveryKey(id))
		pipe.ZRem(ctx, dueIndexKey, id)
		pipe.ZRem(ctx, createdIndexKey, id)
		if webhookID != "" {
			pipe.SRem(ctx, byWebhookKey(webhookID), id)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, fmt.Errorf("deleting delivery: %w", err)
		}
		removed++
	}

	return removed, nil
}

// GetWebhook retrieves a webhook configuration by ID
func (r *Repository) GetWebhook(ctx context.Context, id string) (webhook.Webhook, error) {
	data, err := r.client.HGetAll(ctx, webhookKey(id)).Result()
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("getting webhook: %w", err)
	}
	if len(data) == 0 {
		return webhook.Webhook{}, webhook.ErrNotFound
	}

	var events []string
	if eventsStr, ok := data["events"]; ok && eventsStr != "" {
		if err := json.Unmarshal([]byte(eventsStr), &events); err != nil {
			return webhook.Webhook{}, fmt.Errorf("unmarshaling events: %w", err)
		}
	}

	wh := webhook.Webhook{
		ID:                 data["id"],
		OrganizationID:     data["organization_id"],
		URL:                data["url"],
		Secret:             data["secret"],
		Events:             events,
		IsActive:           data["is_active"] == "1",
		LastDeliveryStatus: data["last_delivery_status"],
		CreatedAt:          time.Unix(parseInt64(data["created_at"]), 0),
	}
	if ts := parseInt64(data["last_delivery_at"]); ts > 0 {
		t := time.Unix(ts, 0)
		wh.LastDeliveryAt = &t
	}

	return wh, nil
}

// CreateWebhook stores a webhook configuration
func (r *Repository) CreateWebhook(ctx context.Context, wh webhook.Webhook) (string, error) {
	eventsJSON, err := json.Marshal(wh.Events)
	if err != nil {
		return "", fmt.Errorf("marshaling events: %w", err)
	}

	isActive := "0"
	if wh.IsActive {
		isActive = "1"
	}

	lastDeliveryAt := int64(0)
	if wh.LastDeliveryAt != nil {
		lastDeliveryAt = wh.LastDeliveryAt.Unix()
	}

	err = r.client.HSet(ctx, webhookKey(wh.ID), map[string]interface{}{
		"id":                   wh.ID,
		"organization_id":      wh.OrganizationID,
		"url":                  wh.URL,
		"secret":               wh.Secret,
		"events":               string(eventsJSON),
		"is_active":            isActive,
		"last_delivery_at":     lastDeliveryAt,
		"last_delivery_status": wh.LastDeliveryStatus,
		"created_at":           wh.CreatedAt.Unix(),
	}).Err()
	if err != nil {
		return "", fmt.Errorf("storing webhook: %w", err)
	}

	return wh.ID, nil
}

// RecordDeliveryResult stamps the webhook's last-delivery state
func (r *Repository) RecordDeliveryResult(ctx context.Context, webhookID, status string, at time.Time) error {
	exists, err := r.client.Exists(ctx, webhookKey(webhookID)).Result()
	if err != nil {
		return fmt.Errorf("checking webhook: %w", err)
	}
	if exists == 0 {
		return webhook.ErrNotFound
	}

	err = r.client.HSet(ctx, webhookKey(webhookID), map[string]interface{}{
		"last_delivery_at":     at.Unix(),
		"last_delivery_status": status,
	}).Err()
	if err != nil {
		return fmt.Errorf("updating webhook delivery state: %w", err)
	}

	return nil
}

// GlobalDeliveryStats returns delivery counts grouped by status across all
// webhooks, feeding the metrics collector
func (r *Repository) GlobalDeliveryStats(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)

	// Scan for all delivery:* keys
	var cursor uint64
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, deliveryPrefix+":*", 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning delivery keys: %w", err)
		}

		for _, key := range keys {
			status, err := r.client.HGet(ctx, key, "status").Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting delivery status: %w", err)
			}
			counts[status]++
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return counts, nil
}

// CountDue returns the number of pending deliveries due at or before now
func (r *Repository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	count, err := r.client.ZCount(ctx, dueIndexKey, "-inf", strconv.FormatInt(now.Unix(), 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting due deliveries: %w", err)
	}

	return count, nil
}

// Close closes the Redis client
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

func deliveryKey(id string) string {
	return fmt.Sprintf("%s:%s", deliveryPrefix, id)
}

func webhookKey(id string) string {
	return fmt.Sprintf("%s:%s", webhookPrefix, id)
}

func byWebhookKey(webhookID string) string {
	return fmt.Sprintf("%s:%s", byWebhookPrefix, webhookID)
}

func deliveryToHash(d webhook.Delivery) map[string]interface{} {
	completedAt := int64(0)
	if d.CompletedAt != nil {
		completedAt = d.CompletedAt.Unix()
	}

	return map[string]interface{}{
		"id":            d.ID,
		"webhook_id":    d.WebhookID,
		"event":         d.Event,
		"payload":       string(d.Payload),
		"status":        d.Status.String(),
		"attempts":      d.Attempts,
		"max_attempts":  d.MaxAttempts,
		"next_retry_at": d.NextRetryAt.Unix(),
		"response_code": d.ResponseCode,
		"response_body": d.ResponseBody,
		"completed_at":  completedAt,
		"created_at":    d.CreatedAt.Unix(),
	}
}

func deliveryFromHash(data map[string]string) webhook.Delivery {
	d := webhook.Delivery{
		ID:           data["id"],
		WebhookID:    data["webhook_id"],
		Event:        data["event"],
		Payload:      []byte(data["payload"]),
		Status:       webhook.NewStatus(data["status"]),
		Attempts:     int(parseInt64(data["attempts"])),
		MaxAttempts:  int(parseInt64(data["max_attempts"])),
		NextRetryAt:  time.Unix(parseInt64(data["next_retry_at"]), 0),
		ResponseCode: int(parseInt64(data["response_code"])),
		ResponseBody: data["response_body"],
		CreatedAt:    time.Unix(parseInt64(data["created_at"]), 0),
	}
	if ts := parseInt64(data["completed_at"]); ts > 0 {
		t := time.Unix(ts, 0)
		d.CompletedAt = &t
	}

	return d
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
