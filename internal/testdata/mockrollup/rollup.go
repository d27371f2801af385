package mockrollup

import (
	"context"
	"time"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/rollup"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

// Interface compliance check
var _ rollup.Service = &Service{}

func (m *Service) ComputeDaily(ctx context.Context, date time.Time) (model.DailyBucket, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(model.DailyBucket), args.Error(1)
}

func (m *Service) History(ctx context.Context, start, end time.Time) ([]model.DailyBucket, error) {
	args := m.Called(ctx, start, end)
	var buckets []model.DailyBucket
	if v := args.Get(0); v != nil {
		buckets = v.([]model.DailyBucket)
	}
	return buckets, args.Error(1)
}
