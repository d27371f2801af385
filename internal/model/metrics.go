package model

// RealtimeMetrics is the rolling view served on every call. The windows
// are intentionally mixed: active visitors over the last hour, page
// views over 24 hours, average time on page over everything retained.
type RealtimeMetrics struct {
	ActiveVisitors int `json:"active_visitors"`
	PageViews24h   int `json:"page_views_24h"`
	AvgTimeOnPage  int `json:"avg_time_on_page"`
}

// DailyBucket is one calendar day of aggregated metrics, keyed by date.
// The in-memory daily series leaves PageVisits and BounceRate at zero;
// the persisted rollup fills all fields.
type DailyBucket struct {
	Date           string  `json:"date"`
	PageVisits     int     `json:"page_visits"`
	PageViews      int     `json:"page_views"`
	AvgTimeOnPage  float64 `json:"avg_time_on_page"`
	BounceRate     float64 `json:"bounce_rate"`
	UniqueVisitors int     `json:"unique_visitors"`
}

// TopPage is one entry of the in-memory top pages ranking. The count is
// a raw page-view count but keeps its historical unique_visitors label.
type TopPage struct {
	PageURL        string `json:"page_url"`
	UniqueVisitors int    `json:"unique_visitors"`
}

// PageStats is one entry of the persisted top pages ranking, which
// reports both counts.
type PageStats struct {
	PageURL        string  `json:"page_url"`
	UniqueVisitors uint64  `json:"unique_visitors"`
	PageViews      uint64  `json:"page_views"`
	AvgTimeOnPage  float64 `json:"avg_time_on_page"`
}

// DailyAggregate is the raw per-day aggregate read from the event sink,
// input to the rollup computation.
type DailyAggregate struct {
	UniqueVisitors  int
	PageViews       int
	Sessions        int
	AvgTimeOnPage   float64
	BouncedSessions int
}

// StoreStats are process-lifetime totals from the in-memory store.
type StoreStats struct {
	TotalVisits   int `json:"total_visits"`
	TotalVisitors int `json:"total_visitors"`
	TotalSessions int `json:"total_sessions"`
}
