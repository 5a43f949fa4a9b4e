package webhook

import (
	"encoding/json"
	"time"
)

const (
	// DefaultMaxAttempts is the retry budget applied to new deliveries
	DefaultMaxAttempts = 5

	// MaxResponseBodyBytes caps how much of a subscriber response is stored
	MaxResponseBodyBytes = 10240
)

/* Sentinel strings persisted in Delivery.ResponseBody when there is no
 * subscriber response to record. Subscribers may see these in delivery logs,
 * so the exact wording is part of the product surface.
 */
const (
	MsgWebhookNotFound   = "Webhook configuration not found"
	MsgWebhookDisabled   = "Webhook is disabled"
	MsgBodyUnreadable    = "Unable to read response body"
	MsgUnknownError      = "Unknown error"
	DeliveryFailedPrefix = "Delivery failed: "
)

/* Delivery tracks the attempt sequence for one event instance against one
 * webhook. A delivery starts pending with zero attempts; each attempt either
 * terminates it (success/failed) or reschedules it with an incremented
 * attempt count and a future NextRetryAt.
 */
type Delivery struct {
	ID           string
	WebhookID    string
	Event        string
	Payload      json.RawMessage
	Status       Status
	Attempts     int
	MaxAttempts  int
	NextRetryAt  time.Time
	ResponseCode int
	ResponseBody string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// TruncateResponseBody trims a subscriber response to MaxResponseBodyBytes.
// Oversized bodies are truncated, never rejected.
func TruncateResponseBody(body string) string {
	if len(body) > MaxResponseBodyBytes {
		return body[:MaxResponseBodyBytes]
	}
	return body
}

// BatchResult aggregates the outcome of one batch-processing pass
type BatchResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// DeliveryStats partitions a webhook's delivery history by current status
type DeliveryStats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
	Pending int64 `json:"pending"`
}
