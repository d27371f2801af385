package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"site-analytics-service/internal/model"
)

// VisitRepository defines event-sink operations for visits.
type VisitRepository interface {
	// CreateBatch inserts visits in one batch; fed by the sink worker.
	CreateBatch(ctx context.Context, visits []model.VisitEvent) error

	// Visits returns visits in [start, end], newest first, optionally
	// filtered by page URL.
	Visits(ctx context.Context, start, end time.Time, pageURL string, limit, offset int) ([]model.VisitEvent, error)

	// TopPages ranks pages by view count over [start, end].
	TopPages(ctx context.Context, start, end time.Time, limit int) ([]model.PageStats, error)

	// DailyAggregate reads the raw per-day aggregate feeding the rollup.
	DailyAggregate(ctx context.Context, date time.Time) (model.DailyAggregate, error)
}

type visitRepository struct {
	conn clickhouse.Conn
}

// NewVisitRepository creates a VisitRepository backed by ClickHouse.
func NewVisitRepository(conn clickhouse.Conn) VisitRepository {
	return &visitRepository{conn: conn}
}

const insertVisitQuery = `
	INSERT INTO page_visits (
		id, kind, page_url, visitor_id, session_id, ts, time_on_page,
		referrer, user_agent, ip_address, event_name, event_data
	)`

func (r *visitRepository) CreateBatch(ctx context.Context, visits []model.VisitEvent) error {
	if len(visits) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertVisitQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, v := range visits {
		eventData, err := marshalEventData(v.EventData)
		if err != nil {
			return err
		}

		if err := batch.Append(
			v.ID,
			string(v.Kind),
			v.PageURL,
			v.VisitorID,
			v.SessionID,
			v.Timestamp,
			int32(v.TimeOnPage),
			v.Referrer,
			v.UserAgent,
			v.IPAddress,
			v.EventName,
			eventData,
		); err != nil {
			return fmt.Errorf("append visit %d: %w", v.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

const visitsQuery = `
	SELECT id, kind, page_url, visitor_id, session_id, ts, time_on_page,
	       referrer, user_agent, ip_address, event_name, event_data
	FROM page_visits
	WHERE ts >= ? AND ts <= ? %s
	ORDER BY ts DESC
	LIMIT ? OFFSET ?`

func (r *visitRepository) Visits(ctx context.Context, start, end time.Time, pageURL string, limit, offset int) ([]model.VisitEvent, error) {
	args := []any{start, end}
	filter := ""
	if pageURL != "" {
		filter = "AND page_url = ?"
		args = append(args, pageURL)
	}
	args = append(args, limit, offset)

	rows, err := r.conn.Query(ctx, fmt.Sprintf(visitsQuery, filter), args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var visits []model.VisitEvent
	for rows.Next() {
		var (
			v          model.VisitEvent
			kind       string
			timeOnPage int32
			eventData  string
		)
		if err := rows.Scan(
			&v.ID, &kind, &v.PageURL, &v.VisitorID, &v.SessionID, &v.Timestamp,
			&timeOnPage, &v.Referrer, &v.UserAgent, &v.IPAddress, &v.EventName, &eventData,
		); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.Kind = model.VisitKind(kind)
		v.TimeOnPage = int(timeOnPage)
		if eventData != "" && eventData != "{}" {
			if err := json.Unmarshal([]byte(eventData), &v.EventData); err != nil {
				return nil, fmt.Errorf("unmarshal event data: %w", err)
			}
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

const topPagesQuery = `
	SELECT page_url,
	       uniqExact(visitor_id) AS unique_visitors,
	       count() AS page_views,
	       avg(time_on_page) AS avg_time_on_page
	FROM page_visits
	WHERE ts >= ? AND ts <= ?
	GROUP BY page_url
	ORDER BY page_views DESC
	LIMIT ?`

func (r *visitRepository) TopPages(ctx context.Context, start, end time.Time, limit int) ([]model.PageStats, error) {
	rows, err := r.conn.Query(ctx, topPagesQuery, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("query top pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageStats
	for rows.Next() {
		var p model.PageStats
		if err := rows.Scan(&p.PageURL, &p.UniqueVisitors, &p.PageViews, &p.AvgTimeOnPage); err != nil {
			return nil, fmt.Errorf("scan page stats: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

const dailyAggregateQuery = `
	SELECT uniqExact(visitor_id), count(), uniqExact(session_id), avg(time_on_page)
	FROM page_visits
	WHERE toDate(ts) = ?`

const bouncedSessionsQuery = `
	SELECT count()
	FROM (
		SELECT session_id
		FROM page_visits
		WHERE toDate(ts) = ?
		GROUP BY session_id
		HAVING count() = 1
	)`

func (r *visitRepository) DailyAggregate(ctx context.Context, date time.Time) (model.DailyAggregate, error) {
	day := date.UTC().Format("2006-01-02")

	var (
		uniques, views, sessions uint64
		avgTime                  float64
	)
	row := r.conn.QueryRow(ctx, dailyAggregateQuery, day)
	if err := row.Scan(&uniques, &views, &sessions, &avgTime); err != nil {
		return model.DailyAggregate{}, fmt.Errorf("scan daily aggregate: %w", err)
	}

	var bounced uint64
	row = r.conn.QueryRow(ctx, bouncedSessionsQuery, day)
	if err := row.Scan(&bounced); err != nil {
		return model.DailyAggregate{}, fmt.Errorf("scan bounced sessions: %w", err)
	}

	return model.DailyAggregate{
		UniqueVisitors:  int(uniques),
		PageViews:       int(views),
		Sessions:        int(sessions),
		AvgTimeOnPage:   avgTime,
		BouncedSessions: int(bounced),
	}, nil
}

func marshalEventData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal event data: %w", err)
	}
	return string(b), nil
}
