package mockservice

import (
	"time"

	"site-analytics-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) BuildVisit(req model.VisitRequest) (model.VisitEvent, error) {
	args := m.Called(req)
	return args.Get(0).(model.VisitEvent), args.Error(1)
}

func (m *Service) TrackVisit(visit model.VisitEvent) model.VisitEvent {
	args := m.Called(visit)
	return args.Get(0).(model.VisitEvent)
}

func (m *Service) Realtime() model.RealtimeMetrics {
	args := m.Called()
	return args.Get(0).(model.RealtimeMetrics)
}

func (m *Service) Daily(days int) []model.DailyBucket {
	args := m.Called(days)
	var buckets []model.DailyBucket
	if v := args.Get(0); v != nil {
		buckets = v.([]model.DailyBucket)
	}
	return buckets
}

func (m *Service) TopPages(limit int, start, end *time.Time) []model.TopPage {
	args := m.Called(limit, start, end)
	var pages []model.TopPage
	if v := args.Get(0); v != nil {
		pages = v.([]model.TopPage)
	}
	return pages
}

func (m *Service) Stats() model.StoreStats {
	args := m.Called()
	return args.Get(0).(model.StoreStats)
}

func (m *Service) GenerateIDs() (string, string) {
	args := m.Called()
	return args.String(0), args.String(1)
}
