package model

import (
	"time"
)

// VisitKind tags a stored record as either a plain page view or a custom
// event. The two are the same wire record; custom events additionally
// carry an event name and payload.
type VisitKind string

const (
	KindPageView    VisitKind = "page_visit"
	KindCustomEvent VisitKind = "event"
)

// VisitRequest represents an incoming tracking beacon.
type VisitRequest struct {
	PageURL    string         `json:"page_url"`
	VisitorID  string         `json:"visitor_id"`
	SessionID  string         `json:"session_id"`
	TimeOnPage int            `json:"time_on_page"`
	Referrer   string         `json:"referrer"`
	UserAgent  string         `json:"user_agent"`
	IPAddress  string         `json:"ip_address"`
	EventName  string         `json:"event_name"`
	EventData  map[string]any `json:"event_data"`
	Timestamp  string         `json:"timestamp"`
}

// VisitEvent is the immutable domain record held by the visit store.
// ID and Timestamp are assigned on append when absent.
type VisitEvent struct {
	ID         int64          `json:"id"`
	Kind       VisitKind      `json:"type"`
	PageURL    string         `json:"page_url"`
	VisitorID  string         `json:"visitor_id"`
	SessionID  string         `json:"session_id"`
	Timestamp  time.Time      `json:"timestamp"`
	TimeOnPage int            `json:"time_on_page"`
	Referrer   string         `json:"referrer"`
	UserAgent  string         `json:"user_agent"`
	IPAddress  string         `json:"ip_address"`
	EventName  string         `json:"event_name,omitempty"`
	EventData  map[string]any `json:"event_data,omitempty"`
}

// IsCustomEvent reports whether the record is the custom event variant.
func (v VisitEvent) IsCustomEvent() bool {
	return v.Kind == KindCustomEvent
}
