package webhook

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a webhook or delivery does not exist
var ErrNotFound = errors.New("not found")

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// DeliveryReader provides read operations for deliveries
type DeliveryReader interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	GetDelivery(ctx context.Context, id string) (Delivery, error)
	/* ListDue returns up to limit pending deliveries whose NextRetryAt is at
	 * or before now, ordered oldest-due first
	 */
	ListDue(ctx context.Context, now time.Time, limit int) ([]Delivery, error)
	DeliveryStats(ctx context.Context, webhookID string) (DeliveryStats, error)
}

// DeliveryWriter provides write operations for deliveries
type DeliveryWriter interface {
	CreateDelivery(ctx context.Context, d Delivery) (string, error)
	/* UpdateDelivery persists all mutable fields of the delivery in a single
	 * logical write. Concurrent readers never observe a partial update.
	 */
	UpdateDelivery(ctx context.Context, d Delivery) error
	/* DeleteDeliveriesBefore removes deliveries created strictly before the
	 * cutoff, irrespective of status, returning the number removed
	 */
	DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WebhookReader provides read operations for webhook configurations
type WebhookReader interface {
	GetWebhook(ctx context.Context, id string) (Webhook, error)
}

// WebhookWriter provides write operations for webhook configurations
type WebhookWriter interface {
	CreateWebhook(ctx context.Context, wh Webhook) (string, error)
	/* RecordDeliveryResult updates the webhook's LastDeliveryAt and
	 * LastDeliveryStatus after a terminal delivery outcome
	 */
	RecordDeliveryResult(ctx context.Context, webhookID, status string, at time.Time) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	DeliveryReader
	DeliveryWriter
	WebhookReader
	WebhookWriter
	Close(ctx context.Context) error
}
