package rollup

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/repository"
)

const dateLayout = "2006-01-02"

// Service computes and serves durable day-bucketed rollups. It runs
// outside the hot path: the in-memory metrics never depend on it.
type Service interface {
	// ComputeDaily aggregates one calendar date from the event sink and
	// upserts the bucket transactionally. On failure the transaction is
	// rolled back and the prior bucket value is untouched.
	ComputeDaily(ctx context.Context, date time.Time) (model.DailyBucket, error)

	// History reads stored buckets in [start, end], newest first.
	History(ctx context.Context, start, end time.Time) ([]model.DailyBucket, error)
}

type service struct {
	repo repository.VisitRepository
	db   *sql.DB
	log  logrus.FieldLogger
}

// NewService builds a rollup Service over the event sink and the
// rollup store.
func NewService(repo repository.VisitRepository, db *sql.DB, log logrus.FieldLogger) Service {
	if log == nil {
		log = logrus.New()
	}
	return &service{repo: repo, db: db, log: log}
}

const upsertBucketQuery = `
	INSERT INTO daily_metrics (date, page_visits, page_views, avg_time_on_page, bounce_rate, unique_visitors)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (date)
	DO UPDATE SET
		page_visits = EXCLUDED.page_visits,
		page_views = EXCLUDED.page_views,
		avg_time_on_page = EXCLUDED.avg_time_on_page,
		bounce_rate = EXCLUDED.bounce_rate,
		unique_visitors = EXCLUDED.unique_visitors,
		updated_at = CURRENT_TIMESTAMP`

func (s *service) ComputeDaily(ctx context.Context, date time.Time) (model.DailyBucket, error) {
	day := date.UTC().Format(dateLayout)

	agg, err := s.repo.DailyAggregate(ctx, date)
	if err != nil {
		return model.DailyBucket{}, fmt.Errorf("aggregate %s: %w", day, err)
	}

	if agg.PageViews == 0 {
		// Nothing happened that day; leave any prior bucket alone.
		return model.DailyBucket{Date: day}, nil
	}

	bounceRate := 0.0
	if agg.Sessions > 0 {
		bounceRate = round2(float64(agg.BouncedSessions) / float64(agg.Sessions) * 100)
	}

	bucket := model.DailyBucket{
		Date: day,
		// The historical rollup stores the unique-visitor count in the
		// page_visits column; callers depend on that shape.
		PageVisits:     agg.UniqueVisitors,
		PageViews:      agg.PageViews,
		AvgTimeOnPage:  agg.AvgTimeOnPage,
		BounceRate:     bounceRate,
		UniqueVisitors: agg.UniqueVisitors,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DailyBucket{}, fmt.Errorf("begin rollup tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, upsertBucketQuery,
		bucket.Date, bucket.PageVisits, bucket.PageViews,
		bucket.AvgTimeOnPage, bucket.BounceRate, bucket.UniqueVisitors,
	)
	if err != nil {
		tx.Rollback()
		return model.DailyBucket{}, fmt.Errorf("upsert bucket %s: %w", day, err)
	}

	if err := tx.Commit(); err != nil {
		return model.DailyBucket{}, fmt.Errorf("commit rollup tx: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"date":       bucket.Date,
		"page_views": bucket.PageViews,
	}).Info("daily rollup stored")

	return bucket, nil
}

const historyQuery = `
	SELECT date, page_visits, page_views, avg_time_on_page, bounce_rate, unique_visitors
	FROM daily_metrics
	WHERE date >= $1 AND date <= $2
	ORDER BY date DESC`

func (s *service) History(ctx context.Context, start, end time.Time) ([]model.DailyBucket, error) {
	rows, err := s.db.QueryContext(ctx, historyQuery, start.UTC().Format(dateLayout), end.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var buckets []model.DailyBucket
	for rows.Next() {
		var (
			b    model.DailyBucket
			date time.Time
		)
		if err := rows.Scan(&date, &b.PageVisits, &b.PageViews, &b.AvgTimeOnPage, &b.BounceRate, &b.UniqueVisitors); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b.Date = date.Format(dateLayout)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
