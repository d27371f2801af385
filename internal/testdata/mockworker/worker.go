package mockworker

import (
	"site-analytics-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type Worker struct {
	mock.Mock
}

func (m *Worker) Enqueue(visit model.VisitEvent) {
	m.Called(visit)
}

func (m *Worker) Shutdown() {
	m.Called()
}
