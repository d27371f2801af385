package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/repository"
	"site-analytics-service/internal/rollup"
	"site-analytics-service/internal/service"
)

// AnalyticsController exposes HTTP handlers for tracking and metrics.
type AnalyticsController interface {
	Track(c *fiber.Ctx) error
	Realtime(c *fiber.Ctx) error
	Daily(c *fiber.Ctx) error
	TopPages(c *fiber.Ctx) error
	Visits(c *fiber.Ctx) error
	Stats(c *fiber.Ctx) error
	Calculate(c *fiber.Ctx) error
	History(c *fiber.Ctx) error
	GenerateIDs(c *fiber.Ctx) error
}

type analyticsController struct {
	service service.AnalyticsService
	repo    repository.VisitRepository
	rollup  rollup.Service
}

// NewAnalyticsController builds an AnalyticsController. repo and rollup
// may be nil when no durable store is configured; their endpoints then
// answer 503.
func NewAnalyticsController(svc service.AnalyticsService, repo repository.VisitRepository, rollupSvc rollup.Service) AnalyticsController {
	return &analyticsController{service: svc, repo: repo, rollup: rollupSvc}
}

// Track ingests one page view or custom event beacon.
func (h *analyticsController) Track(c *fiber.Ctx) error {
	var req model.VisitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}
	if req.IPAddress == "" {
		req.IPAddress = c.IP()
	}

	visit, err := h.service.BuildVisit(req)
	if err != nil {
		return validationResponse(c, err)
	}

	stored := h.service.TrackVisit(visit)

	message := "Page visit tracked successfully"
	if stored.IsCustomEvent() {
		message = "Event tracked successfully"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":        stored.ID,
			"timestamp": stored.Timestamp.Format(time.RFC3339),
			"message":   message,
			"type":      stored.Kind,
		},
	})
}

// Realtime returns the rolling metrics view.
func (h *analyticsController) Realtime(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"metrics": h.service.Realtime()},
	})
}

// Daily returns the in-memory day-bucketed series, oldest first.
func (h *analyticsController) Daily(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"metrics": h.service.Daily(days)},
	})
}

// TopPages returns the ranked top pages. With an event sink configured
// the persisted ranking is served, which reports unique visitors and
// page views separately; without one the in-memory ranking answers.
// Both default to the last seven days.
func (h *analyticsController) TopPages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return err
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return err
	}

	if h.repo != nil {
		now := time.Now().UTC()
		from := now.Add(-7 * 24 * time.Hour)
		if start != nil {
			from = *start
		}
		to := now
		if end != nil {
			to = *end
		}
		if limit < 1 {
			limit = 5
		}

		pages, err := h.repo.TopPages(c.Context(), from, to, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to retrieve top pages")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"pages": pages},
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"pages": h.service.TopPages(limit, start, end)},
	})
}

// Visits reads persisted visits from the event sink.
func (h *analyticsController) Visits(c *fiber.Ctx) error {
	if h.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "event sink not configured")
	}

	start, end, err := requireDateRange(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	visits, err := h.repo.Visits(c.Context(), *start, *end, c.Query("page_url"), limit, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to retrieve visits")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"visits": visits, "count": len(visits)},
	})
}

// Stats returns process-lifetime totals from the in-memory store.
func (h *analyticsController) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"stats": h.service.Stats()},
	})
}

// Calculate runs the durable rollup for one date (admin operation).
func (h *analyticsController) Calculate(c *fiber.Ctx) error {
	if h.rollup == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "rollup store not configured")
	}

	var body struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	bucket, err := h.rollup.ComputeDaily(c.Context(), date)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to calculate daily metrics")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"metrics": bucket},
	})
}

// History reads stored rollup buckets from the rollup store.
func (h *analyticsController) History(c *fiber.Ctx) error {
	if h.rollup == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "rollup store not configured")
	}

	start, end, err := requireDateRange(c)
	if err != nil {
		return err
	}

	buckets, err := h.rollup.History(c.Context(), *start, *end)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to retrieve daily metrics")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"metrics": buckets},
	})
}

// GenerateIDs hands out fresh visitor and session identifiers.
func (h *analyticsController) GenerateIDs(c *fiber.Ctx) error {
	visitorID, sessionID := h.service.GenerateIDs()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"visitor_id": visitorID, "session_id": sessionID},
	})
}

// validationResponse maps a ValidationError to the field-level 400 body;
// anything else falls through as a plain bad request.
func validationResponse(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{
				"message": "Validation Error",
				"details": []fiber.Map{
					{"field": vErr.Field, "message": vErr.Message},
				},
			},
		})
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// parseDateQuery accepts YYYY-MM-DD or RFC 3339 values.
func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
}

func requireDateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return nil, nil, err
	}
	if start == nil || end == nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "start_date and end_date are required")
	}
	if start.After(*end) {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "start_date must be before end_date")
	}
	return start, end, nil
}
