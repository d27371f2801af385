package metrics

import (
	"math"
	"sort"
	"time"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/store"
)

const dateLayout = "2006-01-02"

// Aggregator derives rolling and day-bucketed metrics from the visit
// store on demand. It holds no state of its own; every call recomputes
// from a fresh snapshot.
type Aggregator struct {
	store *store.VisitStore
	now   func() time.Time
}

// New creates an Aggregator reading from the given store.
func New(visits *store.VisitStore) *Aggregator {
	return &Aggregator{store: visits, now: time.Now}
}

// Realtime computes the rolling metrics view. Active visitors are the
// distinct visitor ids of the last hour, page views count the last 24
// hours, while average time on page spans all retained visits.
func (a *Aggregator) Realtime() model.RealtimeMetrics {
	now := a.now().UTC()
	oneHourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	visits := a.store.Snapshot()

	active := map[string]struct{}{}
	pageViews24h := 0
	totalTime := 0

	for _, v := range visits {
		if v.Timestamp.After(oneHourAgo) {
			active[v.VisitorID] = struct{}{}
		}
		if v.Timestamp.After(dayAgo) {
			pageViews24h++
		}
		totalTime += v.TimeOnPage
	}

	avg := 0
	if len(visits) > 0 {
		avg = int(math.Round(float64(totalTime) / float64(len(visits))))
	}

	return model.RealtimeMetrics{
		ActiveVisitors: len(active),
		PageViews24h:   pageViews24h,
		AvgTimeOnPage:  avg,
	}
}

// Daily returns one bucket per calendar day for the last days days,
// today included, oldest first. Days without visits yield a zero
// bucket rather than being omitted.
func (a *Aggregator) Daily(days int) []model.DailyBucket {
	now := a.now().UTC()
	visits := a.store.Snapshot()

	buckets := make([]model.DailyBucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)

		uniques := map[string]struct{}{}
		pageViews := 0
		totalTime := 0
		for _, v := range visits {
			if v.Timestamp.UTC().Format(dateLayout) != date {
				continue
			}
			uniques[v.VisitorID] = struct{}{}
			pageViews++
			totalTime += v.TimeOnPage
		}

		avg := 0.0
		if pageViews > 0 {
			avg = math.Round(float64(totalTime) / float64(pageViews))
		}

		buckets = append(buckets, model.DailyBucket{
			Date:           date,
			UniqueVisitors: len(uniques),
			PageViews:      pageViews,
			AvgTimeOnPage:  avg,
		})
	}

	return buckets
}

// TopPages ranks retained visits by page URL, descending by view count,
// ties broken by first appearance. The window defaults to the last
// seven days when no explicit range is given. The count keeps its
// historical unique_visitors label even though it is a page-view count.
func (a *Aggregator) TopPages(limit int, start, end *time.Time) []model.TopPage {
	now := a.now().UTC()

	from := now.Add(-7 * 24 * time.Hour)
	if start != nil {
		from = *start
	}
	to := now
	if end != nil {
		to = *end
	}

	counts := map[string]int{}
	var order []string

	for _, v := range a.store.Snapshot() {
		ts := v.Timestamp
		if ts.Before(from) || ts.After(to) {
			continue
		}
		if _, seen := counts[v.PageURL]; !seen {
			order = append(order, v.PageURL)
		}
		counts[v.PageURL]++
	}

	pages := make([]model.TopPage, 0, len(order))
	for _, url := range order {
		pages = append(pages, model.TopPage{PageURL: url, UniqueVisitors: counts[url]})
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].UniqueVisitors > pages[j].UniqueVisitors
	})

	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}
	return pages
}
