package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/divebase/divebase/webhook/payload"
	"github.com/divebase/divebase/webhook/signature"
)

const (
	// DeliveryTimeout bounds one outbound request end to end
	DeliveryTimeout = 30 * time.Second

	// DefaultBatchLimit caps one batch-processing pass
	DefaultBatchLimit = 100

	// DefaultRetentionDays is the delivery history retention window
	DefaultRetentionDays = 30
)

/* Outbound wire contract. Existing subscribers match on these exact header
 * names and the user-agent string, so they must not change.
 */
const (
	UserAgent       = "Divebase-Webhook/1.0"
	HeaderEvent     = "X-Divebase-Event"
	HeaderDelivery  = "X-Divebase-Delivery"
	HeaderSignature = "X-Divebase-Signature"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for webhook delivery
type UseCase interface {
	Deliver(ctx context.Context, deliveryID string) (bool, error)
	ProcessPending(ctx context.Context, limit int) (BatchResult, error)
	Retry(ctx context.Context, deliveryID string) error
	Enqueue(ctx context.Context, webhookID, event string, raw json.RawMessage) (string, error)
	Stats(ctx context.Context, webhookID string) (DeliveryStats, error)
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

type Service struct {
	Repo    Repository
	Client  *http.Client
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewService creates a new delivery service with dependency injection
func NewService(repo Repository) *Service {
	return &Service{
		Repo:    repo,
		Client:  &http.Client{Timeout: DeliveryTimeout},
		Timeout: DeliveryTimeout,
		Logger:  zerolog.Nop(),
	}
}

/* Deliver executes one delivery attempt. The boolean result reports terminal
 * success; every other outcome (configuration failure, retriable failure,
 * exhausted retry budget) is classified and persisted here. An error is
 * returned only for caller or storage faults - a missing delivery id, or the
 * repository failing - never for a failed delivery attempt.
 */
func (s *Service) Deliver(ctx context.Context, deliveryID string) (bool, error) {
	d, err := s.Repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return false, fmt.Errorf("loading delivery %s: %w", deliveryID, err)
	}

	// Terminal deliveries are immutable; reprocessing one is a caller error
	if d.Status.IsFinal() {
		return false, fmt.Errorf("delivery %s is already %s", deliveryID, d.Status)
	}

	wh, err := s.Repo.GetWebhook(ctx, d.WebhookID)
	if errors.Is(err, ErrNotFound) {
		return false, s.terminate(ctx, d, MsgWebhookNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("loading webhook %s: %w", d.WebhookID, err)
	}

	if !wh.IsActive {
		return false, s.terminate(ctx, d, MsgWebhookDisabled)
	}

	body, err := payload.Canonical(d.Payload)
	if err != nil {
		// The payload never changes across attempts, so an unserializable
		// payload can never succeed later
		return false, s.terminate(ctx, d, DeliveryFailedPrefix+err.Error())
	}

	sig, err := signature.Sign(d.Payload, wh.Secret, time.Now())
	if err != nil {
		return false, s.terminate(ctx, d, DeliveryFailedPrefix+err.Error())
	}

	code, respBody, err := s.send(ctx, wh.URL, d, body, sig)
	if err != nil {
		return false, s.scheduleRetry(ctx, d, 0, DeliveryFailedPrefix+err.Error())
	}

	if code >= 200 && code < 300 {
		return true, s.succeed(ctx, d, wh, code, respBody)
	}

	return false, s.scheduleRetry(ctx, d, code, respBody)
}

// send dispatches the signed request. Body is the canonical serialization of
// the payload, byte-identical to what was signed.
func (s *Service) send(ctx context.Context, url string, d Delivery, body []byte, sig string) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderEvent, d.Event)
	req.Header.Set(HeaderDelivery, d.ID)
	req.Header.Set(HeaderSignature, sig)

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodyBytes))
	if err != nil {
		// A broken response stream does not change the status classification
		return resp.StatusCode, MsgBodyUnreadable, nil
	}

	return resp.StatusCode, string(raw), nil
}

// succeed records a 2xx outcome and stamps the webhook's last-delivery state
func (s *Service) succeed(ctx context.Context, d Delivery, wh Webhook, code int, respBody string) error {
	now := time.Now()

	d.Status = Success
	if d.Attempts < d.MaxAttempts {
		d.Attempts++
	}
	d.ResponseCode = code
	d.ResponseBody = TruncateResponseBody(respBody)
	d.CompletedAt = &now

	if err := s.Repo.UpdateDelivery(ctx, d); err != nil {
		return fmt.Errorf("updating delivery %s: %w", d.ID, err)
	}

	if err := s.Repo.RecordDeliveryResult(ctx, wh.ID, Success.String(), now); err != nil {
		return fmt.Errorf("recording delivery result for webhook %s: %w", wh.ID, err)
	}

	return nil
}

/* scheduleRetry handles the retriable failure path: the attempt counter is
 * incremented, and the delivery either goes back to pending with a backoff
 * delay or, once the budget is exhausted, terminates as failed. The backoff
 * exponent is the attempt count before the increment, so the first failure
 * waits BaseDelay.
 *
 * The counter never moves past MaxAttempts: an administrative Retry can
 * re-run a delivery whose budget is already spent, and that extra attempt
 * must not push Attempts beyond the budget.
 */
func (s *Service) scheduleRetry(ctx context.Context, d Delivery, code int, respBody string) error {
	if d.Attempts < d.MaxAttempts {
		d.Attempts++
	}
	d.ResponseCode = code
	d.ResponseBody = TruncateResponseBody(respBody)

	if d.Attempts < d.MaxAttempts {
		d.Status = Pending
		d.NextRetryAt = time.Now().Add(Backoff(d.Attempts - 1))
		d.CompletedAt = nil
	} else {
		now := time.Now()
		d.Status = Failed
		d.CompletedAt = &now
	}

	if err := s.Repo.UpdateDelivery(ctx, d); err != nil {
		return fmt.Errorf("updating delivery %s: %w", d.ID, err)
	}

	return nil
}

// terminate marks a delivery as failed without a retry, used for
// configuration-class failures that can never succeed
func (s *Service) terminate(ctx context.Context, d Delivery, reason string) error {
	now := time.Now()

	d.Status = Failed
	d.ResponseBody = TruncateResponseBody(reason)
	d.CompletedAt = &now

	if err := s.Repo.UpdateDelivery(ctx, d); err != nil {
		return fmt.Errorf("updating delivery %s: %w", d.ID, err)
	}

	return nil
}

/* ProcessPending selects up to limit due deliveries (pending, retry time
 * reached, oldest first) and attempts each one. A failure or panic while
 * processing one delivery never aborts the rest of the batch.
 */
func (s *Service) ProcessPending(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	due, err := s.Repo.ListDue(ctx, time.Now(), limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("listing due deliveries: %w", err)
	}

	var result BatchResult
	for _, d := range due {
		if s.deliverOne(ctx, d.ID) {
			result.Success++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// deliverOne wraps a single attempt with panic recovery so one bad delivery
// cannot take down the batch
func (s *Service) deliverOne(ctx context.Context, deliveryID string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			msg := MsgUnknownError
			if err, isErr := r.(error); isErr {
				msg = err.Error()
			}
			s.Logger.Error().Str("delivery_id", deliveryID).Str("panic", msg).Msg("recovered while processing delivery")
			ok = false
		}
	}()

	ok, err := s.Deliver(ctx, deliveryID)
	if err != nil {
		s.Logger.Error().Str("delivery_id", deliveryID).Err(err).Msg("processing delivery")
		return false
	}

	return ok
}

/* Retry is an administrative override: it forces the delivery back to
 * pending with immediate eligibility, regardless of how many attempts have
 * been made. The attempt counter is deliberately left untouched.
 */
func (s *Service) Retry(ctx context.Context, deliveryID string) error {
	d, err := s.Repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("loading delivery %s: %w", deliveryID, err)
	}

	d.Status = Pending
	d.NextRetryAt = time.Now()
	d.CompletedAt = nil

	if err := s.Repo.UpdateDelivery(ctx, d); err != nil {
		return fmt.Errorf("updating delivery %s: %w", deliveryID, err)
	}

	return nil
}

// Enqueue creates a pending delivery for a subscribed, active webhook.
// Used by the admin test-event path; production events are enqueued by the
// event-emission pipeline.
func (s *Service) Enqueue(ctx context.Context, webhookID, event string, raw json.RawMessage) (string, error) {
	if err := payload.ValidateEventType(event); err != nil {
		return "", fmt.Errorf("validating event type: %w", err)
	}

	if _, err := payload.Canonical(raw); err != nil {
		return "", fmt.Errorf("validating payload: %w", err)
	}

	wh, err := s.Repo.GetWebhook(ctx, webhookID)
	if err != nil {
		return "", fmt.Errorf("loading webhook %s: %w", webhookID, err)
	}

	if !wh.IsActive {
		return "", fmt.Errorf("webhook %s is disabled", webhookID)
	}

	if !wh.SubscribesTo(event) {
		return "", fmt.Errorf("webhook %s is not subscribed to %s", webhookID, event)
	}

	now := time.Now()
	d := Delivery{
		ID:          uuid.New().String(),
		WebhookID:   webhookID,
		Event:       event,
		Payload:     raw,
		Status:      Pending,
		Attempts:    0,
		MaxAttempts: DefaultMaxAttempts,
		NextRetryAt: now,
		CreatedAt:   now,
	}

	id, err := s.Repo.CreateDelivery(ctx, d)
	if err != nil {
		return "", fmt.Errorf("storing delivery: %w", err)
	}

	return id, nil
}

// Stats returns exact delivery counts partitioned by status for a webhook
func (s *Service) Stats(ctx context.Context, webhookID string) (DeliveryStats, error) {
	stats, err := s.Repo.DeliveryStats(ctx, webhookID)
	if err != nil {
		return DeliveryStats{}, fmt.Errorf("aggregating delivery stats: %w", err)
	}
	return stats, nil
}

// Cleanup deletes deliveries created strictly before now minus the retention
// window, irrespective of status, and returns the number removed
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := s.Repo.DeleteDeliveriesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old deliveries: %w", err)
	}

	return removed, nil
}
