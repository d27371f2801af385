package mockrepository

import (
	"context"
	"time"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

// Interface compliance check
var _ repository.VisitRepository = &Repository{}

func (m *Repository) CreateBatch(ctx context.Context, visits []model.VisitEvent) error {
	args := m.Called(ctx, visits)
	return args.Error(0)
}

func (m *Repository) Visits(ctx context.Context, start, end time.Time, pageURL string, limit, offset int) ([]model.VisitEvent, error) {
	args := m.Called(ctx, start, end, pageURL, limit, offset)
	var visits []model.VisitEvent
	if v := args.Get(0); v != nil {
		visits = v.([]model.VisitEvent)
	}
	return visits, args.Error(1)
}

func (m *Repository) TopPages(ctx context.Context, start, end time.Time, limit int) ([]model.PageStats, error) {
	args := m.Called(ctx, start, end, limit)
	var pages []model.PageStats
	if v := args.Get(0); v != nil {
		pages = v.([]model.PageStats)
	}
	return pages, args.Error(1)
}

func (m *Repository) DailyAggregate(ctx context.Context, date time.Time) (model.DailyAggregate, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(model.DailyAggregate), args.Error(1)
}
