package subscriptions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages webhook subscriber definitions from webhooks.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of webhooks.yaml
type Config struct {
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig represents a single webhook entry in the YAML file
type WebhookConfig struct {
	ID             string   `yaml:"id"`
	OrganizationID string   `yaml:"organization_id"`
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	Active         *bool    `yaml:"active"` // Optional: defaults to true
}

// Loader holds the loaded subscriptions
type Loader struct {
	subscriptions map[string]*Subscription
}

// NewLoader creates a new subscription loader
func NewLoader() *Loader {
	return &Loader{
		subscriptions: make(map[string]*Subscription),
	}
}

// Load reads and parses the webhooks.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading webhooks file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing webhooks YAML: %w", err)
	}

	for _, wc := range config.Webhooks {
		active := true
		if wc.Active != nil {
			active = *wc.Active
		}

		sub := &Subscription{
			ID:             wc.ID,
			OrganizationID: wc.OrganizationID,
			URL:            wc.URL,
			Secret:         wc.Secret,
			Events:         wc.Events,
			Active:         active,
		}

		if err := sub.Validate(); err != nil {
			return fmt.Errorf("validating webhook: %w", err)
		}

		l.subscriptions[sub.ID] = sub
	}

	return nil
}

// Get retrieves a subscription by its ID
func (l *Loader) Get(id string) (*Subscription, error) {
	sub, exists := l.subscriptions[id]
	if !exists {
		return nil, fmt.Errorf("webhook not found: %s", id)
	}
	return sub, nil
}

// List returns all loaded subscriptions
func (l *Loader) List() []*Subscription {
	subs := make([]*Subscription, 0, len(l.subscriptions))
	for _, sub := range l.subscriptions {
		subs = append(subs, sub)
	}
	return subs
}

// Exists checks if a webhook ID exists in the seed file
func (l *Loader) Exists(id string) bool {
	_, exists := l.subscriptions[id]
	return exists
}
