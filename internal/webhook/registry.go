package webhook

import (
	"errors"
	"sort"
	"sync"
	"time"

	"site-analytics-service/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned for operations on unknown webhook ids.
var ErrNotFound = errors.New("webhook not found")

// DefaultFailureThreshold is the consecutive-failure count at which a
// webhook is disabled. It is larger than the per-notify retry budget,
// so an endpoint survives several full failed cycles before going dark.
const DefaultFailureThreshold = 5

// entry wraps a webhook with its own lock so delivery bookkeeping for
// one subscriber never serializes against another's.
type entry struct {
	mu sync.Mutex
	wh model.Webhook
}

func (e *entry) snapshot() model.Webhook {
	e.mu.Lock()
	defer e.mu.Unlock()
	wh := e.wh
	wh.Events = append([]string(nil), e.wh.Events...)
	return wh
}

// Registry tracks subscriber endpoints and their health state. The map
// lock guards membership only; per-webhook counters live behind each
// entry's lock.
type Registry struct {
	mu               sync.RWMutex
	webhooks         map[string]*entry
	failureThreshold int
	now              func() time.Time
}

// NewRegistry creates an empty registry. A non-positive threshold falls
// back to the default.
func NewRegistry(failureThreshold int) *Registry {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	return &Registry{
		webhooks:         make(map[string]*entry),
		failureThreshold: failureThreshold,
		now:              time.Now,
	}
}

// Add registers a new active webhook and returns it.
func (r *Registry) Add(req model.WebhookRequest) model.Webhook {
	wh := model.Webhook{
		ID:          uuid.NewString(),
		URL:         req.URL,
		Events:      append([]string(nil), req.Events...),
		Secret:      req.Secret,
		Description: req.Description,
		Status:      model.WebhookActive,
		CreatedAt:   r.now().UTC(),
	}

	r.mu.Lock()
	r.webhooks[wh.ID] = &entry{wh: wh}
	r.mu.Unlock()

	return wh
}

// Get returns a copy of the webhook with the given id.
func (r *Registry) Get(id string) (model.Webhook, error) {
	r.mu.RLock()
	e, ok := r.webhooks[id]
	r.mu.RUnlock()
	if !ok {
		return model.Webhook{}, ErrNotFound
	}
	return e.snapshot(), nil
}

// Remove unregisters a webhook, failing with ErrNotFound for unknown
// ids. Failed webhooks remain removable.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.webhooks[id]; !ok {
		return ErrNotFound
	}
	delete(r.webhooks, id)
	return nil
}

// List returns copies of every registered webhook, failed ones
// included, ordered by registration time.
func (r *Registry) List() []model.Webhook {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.webhooks))
	for _, e := range r.webhooks {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]model.Webhook, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Match returns every active webhook subscribed to eventType, either
// explicitly or via "*". Failed webhooks never match.
func (r *Registry) Match(eventType string) []model.Webhook {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.webhooks))
	for _, e := range r.webhooks {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var matched []model.Webhook
	for _, e := range entries {
		wh := e.snapshot()
		if wh.Status != model.WebhookActive {
			continue
		}
		for _, ev := range wh.Events {
			if ev == eventType || ev == "*" {
				matched = append(matched, wh)
				break
			}
		}
	}
	return matched
}

// RecordSuccess resets the failure counter and stamps the trigger time.
func (r *Registry) RecordSuccess(id string) {
	r.mu.RLock()
	e, ok := r.webhooks[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	now := r.now().UTC()
	e.mu.Lock()
	e.wh.FailureCount = 0
	e.wh.LastTriggered = &now
	e.mu.Unlock()
}

// RecordFailure increments the consecutive-failure counter and reports
// whether the webhook crossed the threshold into the failed state. The
// state is terminal until the endpoint is re-registered.
func (r *Registry) RecordFailure(id string) (disabled bool) {
	r.mu.RLock()
	e, ok := r.webhooks[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.wh.FailureCount++
	if e.wh.FailureCount >= r.failureThreshold && e.wh.Status != model.WebhookFailed {
		e.wh.Status = model.WebhookFailed
		return true
	}
	return false
}

// Health summarizes registry state.
func (r *Registry) Health() model.WebhookHealth {
	all := r.List()
	h := model.WebhookHealth{TotalWebhooks: len(all)}
	for _, wh := range all {
		switch wh.Status {
		case model.WebhookActive:
			h.ActiveWebhooks++
		case model.WebhookFailed:
			h.FailedWebhooks++
		}
	}
	return h
}
