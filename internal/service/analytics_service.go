package service

import (
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"

	"site-analytics-service/internal/metrics"
	"site-analytics-service/internal/model"
	"site-analytics-service/internal/store"
)

const (
	maxURLLen       = 500
	maxIDLen        = 100
	maxUserAgentLen = 1000
	maxEventNameLen = 100
	maxTimeOnPage   = 86400 // 24 hours in seconds
)

// ValidationError reports a malformed input field. It is never retried
// and always surfaced to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// AnalyticsService wires ingestion and in-memory metrics queries.
type AnalyticsService interface {
	// BuildVisit validates a tracking beacon and constructs the domain
	// record, tagging it as a page view or custom event.
	BuildVisit(req model.VisitRequest) (model.VisitEvent, error)

	// TrackVisit appends to the in-memory store and, when a durable
	// sink is configured, enqueues the stored record for persistence.
	TrackVisit(visit model.VisitEvent) model.VisitEvent

	Realtime() model.RealtimeMetrics
	Daily(days int) []model.DailyBucket
	TopPages(limit int, start, end *time.Time) []model.TopPage
	Stats() model.StoreStats

	// GenerateIDs returns fresh visitor and session identifiers.
	GenerateIDs() (visitorID, sessionID string)
}

type analyticsService struct {
	store  *store.VisitStore
	agg    *metrics.Aggregator
	worker VisitWorker
}

// NewAnalyticsService constructs the service. worker may be nil when no
// durable sink is configured.
func NewAnalyticsService(visits *store.VisitStore, agg *metrics.Aggregator, worker VisitWorker) AnalyticsService {
	return &analyticsService{store: visits, agg: agg, worker: worker}
}

func (s *analyticsService) BuildVisit(req model.VisitRequest) (model.VisitEvent, error) {
	if err := validateURL("page_url", req.PageURL, true); err != nil {
		return model.VisitEvent{}, err
	}
	if err := validateID("visitor_id", req.VisitorID); err != nil {
		return model.VisitEvent{}, err
	}
	if err := validateID("session_id", req.SessionID); err != nil {
		return model.VisitEvent{}, err
	}
	if req.TimeOnPage < 0 || req.TimeOnPage > maxTimeOnPage {
		return model.VisitEvent{}, &ValidationError{Field: "time_on_page", Message: "must be between 0 and 86400"}
	}
	if req.Referrer != "" {
		if err := validateURL("referrer", req.Referrer, false); err != nil {
			return model.VisitEvent{}, err
		}
	}
	if len(req.UserAgent) > maxUserAgentLen {
		return model.VisitEvent{}, &ValidationError{Field: "user_agent", Message: "exceeds maximum length"}
	}
	if req.IPAddress != "" && net.ParseIP(req.IPAddress) == nil {
		return model.VisitEvent{}, &ValidationError{Field: "ip_address", Message: "is not a valid IP address"}
	}
	if len(req.EventName) > maxEventNameLen {
		return model.VisitEvent{}, &ValidationError{Field: "event_name", Message: "exceeds maximum length"}
	}

	kind := model.KindPageView
	switch {
	case req.EventName != "" && req.EventData != nil:
		kind = model.KindCustomEvent
	case req.EventName != "" || req.EventData != nil:
		return model.VisitEvent{}, &ValidationError{
			Field:   "event_name",
			Message: "event_name and event_data must be provided together",
		}
	}

	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return model.VisitEvent{}, &ValidationError{Field: "timestamp", Message: "must be an ISO-8601 timestamp"}
		}
		ts = parsed.UTC()
	}

	return model.VisitEvent{
		Kind:       kind,
		PageURL:    req.PageURL,
		VisitorID:  req.VisitorID,
		SessionID:  req.SessionID,
		Timestamp:  ts,
		TimeOnPage: req.TimeOnPage,
		Referrer:   req.Referrer,
		UserAgent:  req.UserAgent,
		IPAddress:  req.IPAddress,
		EventName:  req.EventName,
		EventData:  req.EventData,
	}, nil
}

func (s *analyticsService) TrackVisit(visit model.VisitEvent) model.VisitEvent {
	stored := s.store.Append(visit)
	if s.worker != nil {
		s.worker.Enqueue(stored)
	}
	return stored
}

func (s *analyticsService) Realtime() model.RealtimeMetrics {
	return s.agg.Realtime()
}

func (s *analyticsService) Daily(days int) []model.DailyBucket {
	return s.agg.Daily(days)
}

func (s *analyticsService) TopPages(limit int, start, end *time.Time) []model.TopPage {
	return s.agg.TopPages(limit, start, end)
}

func (s *analyticsService) Stats() model.StoreStats {
	return s.store.Stats()
}

func (s *analyticsService) GenerateIDs() (string, string) {
	return uuid.NewString(), uuid.NewString()
}

func validateURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
	if len(raw) > maxURLLen {
		return &ValidationError{Field: field, Message: "exceeds maximum length"}
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute URL"}
	}
	return nil
}

func validateID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if len(id) > maxIDLen {
		return &ValidationError{Field: field, Message: "exceeds maximum length"}
	}
	return nil
}
