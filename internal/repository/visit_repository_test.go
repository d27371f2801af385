package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/testdata/mockclickhousebatch"
	"site-analytics-service/internal/testdata/mockclickhouseconnection"
	"site-analytics-service/internal/testdata/mockclickhouserows"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type VisitRepositoryTestSuite struct {
	suite.Suite

	repository *visitRepository
	connMock   *mockclickhouseconnection.Connection
	batchMock  *mockclickhousebatch.Batch
}

func TestVisitRepository(t *testing.T) {
	suite.Run(t, new(VisitRepositoryTestSuite))
}

func (s *VisitRepositoryTestSuite) SetupTest() {
	s.connMock = &mockclickhouseconnection.Connection{}
	s.batchMock = &mockclickhousebatch.Batch{}
	s.repository = &visitRepository{conn: s.connMock}
}

func (s *VisitRepositoryTestSuite) TearDownTest() {
	s.connMock.AssertExpectations(s.T())
	s.batchMock.AssertExpectations(s.T())
}

func (s *VisitRepositoryTestSuite) TestCreateBatch_Success() {
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	visit := model.VisitEvent{
		ID:         42,
		Kind:       model.KindCustomEvent,
		PageURL:    "https://example.com/pricing",
		VisitorID:  "v1",
		SessionID:  "s1",
		Timestamp:  ts,
		TimeOnPage: 30,
		Referrer:   "https://google.com",
		UserAgent:  "Mozilla/5.0",
		IPAddress:  "203.0.113.9",
		EventName:  "signup_click",
		EventData:  map[string]any{"plan": "pro"},
	}

	s.connMock.On("PrepareBatch", ctx, insertVisitQuery).Return(s.batchMock, nil)
	s.batchMock.On("Append",
		int64(42),
		"event",
		"https://example.com/pricing",
		"v1",
		"s1",
		ts,
		int32(30),
		"https://google.com",
		"Mozilla/5.0",
		"203.0.113.9",
		"signup_click",
		`{"plan":"pro"}`,
	).Return(nil)
	s.batchMock.On("Send").Return(nil)

	err := s.repository.CreateBatch(ctx, []model.VisitEvent{visit})

	s.NoError(err)
}

func (s *VisitRepositoryTestSuite) TestCreateBatch_EmptyIsNoop() {
	err := s.repository.CreateBatch(context.Background(), nil)
	s.NoError(err)
}

func (s *VisitRepositoryTestSuite) TestCreateBatch_PrepareError() {
	ctx := context.Background()
	s.connMock.On("PrepareBatch", ctx, insertVisitQuery).Return(nil, errors.New("connection refused"))

	err := s.repository.CreateBatch(ctx, []model.VisitEvent{{ID: 1}})

	s.ErrorContains(err, "prepare batch")
}

func (s *VisitRepositoryTestSuite) TestCreateBatch_SendError() {
	ctx := context.Background()
	s.connMock.On("PrepareBatch", ctx, insertVisitQuery).Return(s.batchMock, nil)
	s.batchMock.On("Append",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(nil)
	s.batchMock.On("Send").Return(errors.New("io timeout"))

	err := s.repository.CreateBatch(ctx, []model.VisitEvent{{ID: 1}})

	s.ErrorContains(err, "send batch")
}

func (s *VisitRepositoryTestSuite) TestCreateBatch_NilEventDataMarshalsToEmptyObject() {
	ctx := context.Background()
	s.connMock.On("PrepareBatch", ctx, insertVisitQuery).Return(s.batchMock, nil)
	s.batchMock.On("Append",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, "{}",
	).Return(nil)
	s.batchMock.On("Send").Return(nil)

	err := s.repository.CreateBatch(ctx, []model.VisitEvent{{ID: 1, Kind: model.KindPageView}})

	s.NoError(err)
}

func (s *VisitRepositoryTestSuite) TestTopPages_Success() {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	rows := mockclickhouserows.New(
		[]any{"https://example.com/", uint64(3), uint64(10), 12.5},
		[]any{"https://example.com/docs", uint64(2), uint64(4), 30.0},
	)
	s.connMock.On("Query", ctx, topPagesQuery, []any{start, end, 5}).Return(rows, nil)

	pages, err := s.repository.TopPages(ctx, start, end, 5)

	s.NoError(err)
	s.Equal([]model.PageStats{
		{PageURL: "https://example.com/", UniqueVisitors: 3, PageViews: 10, AvgTimeOnPage: 12.5},
		{PageURL: "https://example.com/docs", UniqueVisitors: 2, PageViews: 4, AvgTimeOnPage: 30},
	}, pages)
}

func (s *VisitRepositoryTestSuite) TestTopPages_QueryError() {
	ctx := context.Background()
	s.connMock.On("Query", ctx, topPagesQuery, mock.Anything).Return(nil, errors.New("connection reset"))

	pages, err := s.repository.TopPages(ctx, time.Now(), time.Now(), 5)

	s.ErrorContains(err, "query top pages")
	s.Nil(pages)
}

func (s *VisitRepositoryTestSuite) TestTopPages_RowsError() {
	ctx := context.Background()
	rows := mockclickhouserows.New().WithErr(errors.New("stream aborted"))
	s.connMock.On("Query", ctx, topPagesQuery, mock.Anything).Return(rows, nil)

	_, err := s.repository.TopPages(ctx, time.Now(), time.Now(), 5)

	s.ErrorContains(err, "stream aborted")
}
