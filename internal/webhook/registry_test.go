package webhook

import (
	"testing"
	"time"

	"site-analytics-service/internal/model"

	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite

	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.registry = NewRegistry(5)
}

func (s *RegistryTestSuite) TestAdd_CreatesActiveWebhook() {
	wh := s.registry.Add(model.WebhookRequest{
		URL:    "https://hooks.example.com/a",
		Events: []string{"page_view"},
		Secret: "s3cret",
	})

	s.NotEmpty(wh.ID)
	s.Equal(model.WebhookActive, wh.Status)
	s.Equal(0, wh.FailureCount)
	s.Nil(wh.LastTriggered)

	got, err := s.registry.Get(wh.ID)
	s.NoError(err)
	s.Equal(wh.ID, got.ID)
}

func (s *RegistryTestSuite) TestGet_UnknownID() {
	_, err := s.registry.Get("nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RegistryTestSuite) TestRemove() {
	wh := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/a", Events: []string{"*"}})

	s.NoError(s.registry.Remove(wh.ID))
	s.ErrorIs(s.registry.Remove(wh.ID), ErrNotFound)
}

func (s *RegistryTestSuite) TestMatch_EventTypeAndWildcard() {
	pv := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/pv", Events: []string{"page_view"}})
	all := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/all", Events: []string{"*"}})
	s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/other", Events: []string{"error_rate"}})

	matched := s.registry.Match("page_view")

	s.Require().Len(matched, 2)
	ids := []string{matched[0].ID, matched[1].ID}
	s.Contains(ids, pv.ID)
	s.Contains(ids, all.ID)
}

func (s *RegistryTestSuite) TestRecordFailure_ThresholdDisables() {
	wh := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/a", Events: []string{"page_view"}})

	for i := 0; i < 4; i++ {
		s.False(s.registry.RecordFailure(wh.ID))
	}
	s.True(s.registry.RecordFailure(wh.ID), "fifth consecutive failure crosses the threshold")

	got, err := s.registry.Get(wh.ID)
	s.NoError(err)
	s.Equal(model.WebhookFailed, got.Status)
	s.Equal(5, got.FailureCount)

	s.Empty(s.registry.Match("page_view"), "failed webhooks never match")
	s.Len(s.registry.List(), 1, "failed webhooks remain listable")
	s.NoError(s.registry.Remove(wh.ID), "failed webhooks remain removable")
}

func (s *RegistryTestSuite) TestRecordSuccess_ResetsCounter() {
	wh := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/a", Events: []string{"page_view"}})

	s.registry.RecordFailure(wh.ID)
	s.registry.RecordFailure(wh.ID)
	s.registry.RecordSuccess(wh.ID)

	got, err := s.registry.Get(wh.ID)
	s.NoError(err)
	s.Equal(0, got.FailureCount)
	s.Require().NotNil(got.LastTriggered)
	s.WithinDuration(time.Now().UTC(), *got.LastTriggered, time.Minute)
}

func (s *RegistryTestSuite) TestList_OrderedByRegistration() {
	times := []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	i := 0
	s.registry.now = func() time.Time { t := times[i]; i++; return t }

	first := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/1", Events: []string{"*"}})
	second := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/2", Events: []string{"*"}})
	third := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/3", Events: []string{"*"}})

	list := s.registry.List()
	s.Require().Len(list, 3)
	s.Equal([]string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func (s *RegistryTestSuite) TestHealth() {
	a := s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/a", Events: []string{"*"}})
	s.registry.Add(model.WebhookRequest{URL: "https://hooks.example.com/b", Events: []string{"*"}})

	for i := 0; i < 5; i++ {
		s.registry.RecordFailure(a.ID)
	}

	h := s.registry.Health()
	s.Equal(model.WebhookHealth{TotalWebhooks: 2, ActiveWebhooks: 1, FailedWebhooks: 1}, h)
}
