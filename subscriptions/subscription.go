package subscriptions

import (
	"fmt"
	"net/url"
	"time"

	"github.com/divebase/divebase/webhook"
	"github.com/divebase/divebase/webhook/payload"
)

/* Subscription represents one webhook subscriber definition from a seed file.
 * Seed files are operator tooling for development and test environments;
 * production subscriber configuration lives in the platform database.
 */
type Subscription struct {
	ID             string
	OrganizationID string
	URL            string
	Secret         string
	Events         []string
	Active         bool
}

// Validate checks if the subscription definition is valid
func (s *Subscription) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if s.OrganizationID == "" {
		return fmt.Errorf("organization_id cannot be empty for webhook %s", s.ID)
	}
	if s.URL == "" {
		return fmt.Errorf("url cannot be empty for webhook %s", s.ID)
	}

	parsed, err := url.Parse(s.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("url must be absolute for webhook %s: %s", s.ID, s.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https for webhook %s (got %s)", s.ID, parsed.Scheme)
	}

	if s.Secret == "" {
		return fmt.Errorf("secret cannot be empty for webhook %s", s.ID)
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("webhook %s must subscribe to at least one event", s.ID)
	}
	for _, event := range s.Events {
		if err := payload.ValidateEventType(event); err != nil {
			return fmt.Errorf("invalid event '%s' for webhook %s: %w", event, s.ID, err)
		}
	}

	return nil
}

// ToWebhook converts the seed definition into a domain webhook record
func (s *Subscription) ToWebhook() webhook.Webhook {
	return webhook.Webhook{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		URL:            s.URL,
		Secret:         s.Secret,
		Events:         s.Events,
		IsActive:       s.Active,
		CreatedAt:      time.Now(),
	}
}
