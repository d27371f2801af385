package model

import "time"

// WebhookStatus is the delivery health state of a subscriber endpoint.
type WebhookStatus string

const (
	WebhookActive WebhookStatus = "active"
	WebhookFailed WebhookStatus = "failed"
)

// WebhookRequest is the registration payload for a subscriber.
type WebhookRequest struct {
	URL         string   `json:"url"`
	Events      []string `json:"events"`
	Secret      string   `json:"secret"`
	Description string   `json:"description"`
}

// Webhook is a registered subscriber endpoint. Events may contain "*"
// to subscribe to everything. The secret never leaves the process.
type Webhook struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	Events        []string      `json:"events"`
	Secret        string        `json:"-"`
	Description   string        `json:"description,omitempty"`
	Status        WebhookStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	LastTriggered *time.Time    `json:"last_triggered"`
	FailureCount  int           `json:"failure_count"`
}

// DeliveryPayload is the JSON body posted to subscriber endpoints.
type DeliveryPayload struct {
	EventType string `json:"event_type"`
	Data      any    `json:"data"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// WebhookHealth summarizes registry state for the health endpoint.
type WebhookHealth struct {
	TotalWebhooks  int `json:"total_webhooks"`
	ActiveWebhooks int `json:"active_webhooks"`
	FailedWebhooks int `json:"failed_webhooks"`
}
