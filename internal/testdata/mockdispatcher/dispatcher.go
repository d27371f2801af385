package mockdispatcher

import (
	"site-analytics-service/internal/model"
	"site-analytics-service/internal/webhook"

	"github.com/stretchr/testify/mock"
)

type Dispatcher struct {
	mock.Mock
}

// Interface compliance check
var _ webhook.Dispatcher = &Dispatcher{}

func (m *Dispatcher) Notify(eventType string, data any, source string) {
	m.Called(eventType, data, source)
}

func (m *Dispatcher) Register(req model.WebhookRequest) model.Webhook {
	args := m.Called(req)
	return args.Get(0).(model.Webhook)
}
