package webhook

import (
	"strings"
	"time"
)

/* Webhook represents a subscriber endpoint registered by a tenant organization
 * Uses value semantics as it represents data, not behavior
 */
type Webhook struct {
	ID                 string
	OrganizationID     string
	URL                string
	Secret             string
	Events             []string
	IsActive           bool
	LastDeliveryAt     *time.Time
	LastDeliveryStatus string
	CreatedAt          time.Time
}

/* SubscribesTo reports whether the webhook is subscribed to the given event.
 * Supports exact matching and prefix matching (e.g. "booking.*" matches
 * "booking.created"). An empty subscription list matches nothing.
 */
func (w Webhook) SubscribesTo(event string) bool {
	for _, subscribed := range w.Events {
		if subscribed == event {
			return true
		}

		if strings.HasSuffix(subscribed, ".*") {
			prefix := strings.TrimSuffix(subscribed, ".*")
			if strings.HasPrefix(event, prefix+".") {
				return true
			}
		}
	}

	return false
}
