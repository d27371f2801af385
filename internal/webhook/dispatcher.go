package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"site-analytics-service/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRetries is the number of re-delivery attempts after the
	// first failure.
	DefaultMaxRetries = 3
	// DefaultBaseDelay seeds the exponential backoff: 1s, 2s, 4s.
	DefaultBaseDelay = time.Second

	userAgent       = "SiteAnalytics-Webhook/1.0"
	signatureHeader = "X-Webhook-Signature"
	testSource      = "analytics-system"
)

// Dispatcher fans events out to subscribed webhooks.
type Dispatcher interface {
	// Notify delivers the event to every matching active webhook
	// concurrently and returns once all attempts, retries included, have
	// settled. Individual delivery failures never fail the call.
	Notify(eventType string, data any, source string)

	// Register creates a webhook and fires one synchronous test
	// delivery. A failed test does not block registration; it only
	// counts against the webhook.
	Register(req model.WebhookRequest) model.Webhook
}

type dispatcher struct {
	registry   *Registry
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	log        logrus.FieldLogger
	now        func() time.Time
	sleep      func(time.Duration)
}

// Options tunes dispatcher behavior; zero values pick the defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// NewDispatcher builds a Dispatcher over the given registry.
func NewDispatcher(registry *Registry, opts Options, log logrus.FieldLogger) Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if log == nil {
		log = logrus.New()
	}
	return &dispatcher{
		registry:   registry,
		client:     &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		log:        log,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

func (d *dispatcher) Notify(eventType string, data any, source string) {
	payload := model.DeliveryPayload{
		EventType: eventType,
		Data:      data,
		Source:    source,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}

	// Marshal exactly once: the signature must cover the transmitted
	// bytes, and every subscriber receives the same body.
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.WithError(err).WithField("event_type", eventType).Error("marshal webhook payload")
		return
	}

	matched := d.registry.Match(eventType)
	if len(matched) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, wh := range matched {
		wg.Add(1)
		go func(wh model.Webhook) {
			defer wg.Done()
			d.deliverWithRetry(wh, body)
		}(wh)
	}
	wg.Wait()
}

func (d *dispatcher) Register(req model.WebhookRequest) model.Webhook {
	wh := d.registry.Add(req)

	testPayload := model.DeliveryPayload{
		EventType: "test",
		Data: map[string]any{
			"message":   "Webhook test successful",
			"timestamp": d.now().UTC().Format(time.RFC3339),
		},
		Source:    testSource,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(testPayload)
	if err == nil {
		err = d.deliver(wh, body)
	}
	if err != nil {
		d.log.WithError(err).WithField("url", wh.URL).Warn("webhook test delivery failed")
		d.registry.RecordFailure(wh.ID)
	} else {
		d.registry.RecordSuccess(wh.ID)
		d.log.WithField("url", wh.URL).Info("webhook test delivery succeeded")
	}

	created, getErr := d.registry.Get(wh.ID)
	if getErr != nil {
		return wh
	}
	return created
}

// deliverWithRetry runs the full attempt sequence for one subscriber.
// Exhausting the retries records a single failure against the webhook.
func (d *dispatcher) deliverWithRetry(wh model.Webhook, body []byte) {
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			d.sleep(d.baseDelay << (attempt - 1))
		}

		err := d.deliver(wh, body)
		if err == nil {
			d.registry.RecordSuccess(wh.ID)
			return
		}
		d.log.WithError(err).WithFields(logrus.Fields{
			"url":     wh.URL,
			"attempt": attempt,
		}).Warn("webhook delivery failed")
	}

	if d.registry.RecordFailure(wh.ID) {
		d.log.WithField("url", wh.URL).Error("webhook disabled after repeated failures")
	}
}

// deliver posts the already-serialized body, signing it when the
// webhook has a secret.
func (d *dispatcher) deliver(wh model.Webhook, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if wh.Secret != "" {
		req.Header.Set(signatureHeader, Sign(wh.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature receivers verify.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
