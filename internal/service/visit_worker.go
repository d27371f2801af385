package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"site-analytics-service/internal/model"
	"site-analytics-service/internal/repository"
)

// VisitWorker accepts visits for asynchronous persistence.
type VisitWorker interface {
	Enqueue(visit model.VisitEvent)
	Shutdown()
}

// batchVisitWorker buffers visits and flushes them to the event sink in
// batches, either when the batch fills or on a timer. A sink failure is
// logged and dropped; the in-memory store already holds the visit and
// correctness never depends on the sink.
type batchVisitWorker struct {
	repo          repository.VisitRepository
	queue         chan model.VisitEvent
	batchSize     int
	flushInterval time.Duration
	log           logrus.FieldLogger
	wg            sync.WaitGroup
}

// NewBatchVisitWorker starts the background flush loop.
func NewBatchVisitWorker(repo repository.VisitRepository, bufferSize, batchSize int, interval time.Duration, log logrus.FieldLogger) *batchVisitWorker {
	if log == nil {
		log = logrus.New()
	}
	w := &batchVisitWorker{
		repo:          repo,
		queue:         make(chan model.VisitEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: interval,
		log:           log,
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Enqueue hands a visit to the flush loop. Blocks when the buffer is
// full rather than dropping.
func (w *batchVisitWorker) Enqueue(visit model.VisitEvent) {
	w.queue <- visit
}

// Shutdown drains the queue, flushes the remainder and stops the loop.
func (w *batchVisitWorker) Shutdown() {
	close(w.queue)
	w.wg.Wait()
	w.log.Info("visit worker stopped")
}

func (w *batchVisitWorker) loop() {
	defer w.wg.Done()

	var batch []model.VisitEvent
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case visit, ok := <-w.queue:
			if !ok {
				if len(batch) > 0 {
					w.flush(batch)
				}
				return
			}

			batch = append(batch, visit)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = nil
			}
		}
	}
}

func (w *batchVisitWorker) flush(visits []model.VisitEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.repo.CreateBatch(ctx, visits); err != nil {
		w.log.WithError(err).WithField("count", len(visits)).Error("flush visits to sink")
		return
	}
	w.log.WithField("count", len(visits)).Debug("visits flushed to sink")
}
