package controller

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/service"
	"site-analytics-service/internal/webhook"
)

// WebhookController exposes the webhook registry and the inbound
// analytics receiver.
type WebhookController interface {
	Register(c *fiber.Ctx) error
	List(c *fiber.Ctx) error
	Unregister(c *fiber.Ctx) error
	Health(c *fiber.Ctx) error
	ReceiveAnalytics(c *fiber.Ctx) error
}

type webhookController struct {
	registry   *webhook.Registry
	dispatcher webhook.Dispatcher
	analytics  service.AnalyticsService
	log        logrus.FieldLogger
}

func NewWebhookController(registry *webhook.Registry, dispatcher webhook.Dispatcher, analytics service.AnalyticsService, log logrus.FieldLogger) WebhookController {
	return &webhookController{
		registry:   registry,
		dispatcher: dispatcher,
		analytics:  analytics,
		log:        log,
	}
}

// Register adds a subscriber and fires a synchronous test delivery.
func (h *webhookController) Register(c *fiber.Ctx) error {
	var req model.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}
	if req.URL == "" || len(req.Events) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "url and events are required")
	}

	wh := h.dispatcher.Register(req)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Webhook registered successfully",
		"data":    fiber.Map{"webhook": wh},
	})
}

// List returns every registered webhook without secrets.
func (h *webhookController) List(c *fiber.Ctx) error {
	webhooks := h.registry.List()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"webhooks": webhooks, "count": len(webhooks)},
	})
}

// Unregister removes a webhook by id.
func (h *webhookController) Unregister(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.registry.Remove(id); err != nil {
		if errors.Is(err, webhook.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "webhook not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to unregister webhook")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Webhook unregistered successfully",
	})
}

// Health reports registry counts.
func (h *webhookController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"details":   h.registry.Health(),
	})
}

type inboundEvent struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Source    string         `json:"source"`
}

// ReceiveAnalytics accepts an upstream analytics event, folds it into
// the local store where it maps to a visit, then fans it out to the
// registered subscribers.
func (h *webhookController) ReceiveAnalytics(c *fiber.Ctx) error {
	var evt inboundEvent
	if err := c.BodyParser(&evt); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}
	if evt.EventType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "event_type is required")
	}

	switch evt.EventType {
	case "page_view", "event":
		if err := h.ingest(evt.Data, nil, nil); err != nil {
			return validationResponse(c, err)
		}
	case "session_start":
		name := "session_start"
		data := map[string]any{"session_type": "new"}
		if err := h.ingest(evt.Data, &name, data); err != nil {
			return validationResponse(c, err)
		}
	default:
		h.log.WithField("event_type", evt.EventType).Warn("unhandled inbound event type")
	}

	h.dispatcher.Notify(evt.EventType, evt.Data, evt.Source)

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Webhook processed successfully",
		"event_type": evt.EventType,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// ingest maps the loose inbound payload onto a visit request. eventName
// and eventData, when set, override whatever the payload carried.
func (h *webhookController) ingest(data map[string]any, eventName *string, eventData map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return &service.ValidationError{Field: "data", Message: "must be a json object"}
	}

	var req model.VisitRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return &service.ValidationError{Field: "data", Message: "does not describe a visit"}
	}
	if eventName != nil {
		req.EventName = *eventName
		req.EventData = eventData
	}

	visit, err := h.analytics.BuildVisit(req)
	if err != nil {
		return err
	}
	h.analytics.TrackVisit(visit)
	return nil
}
