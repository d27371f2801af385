package rollup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NewScheduler wires the nightly rollup job. The default schedule
// computes yesterday's bucket shortly after midnight UTC; the admin
// endpoint covers backfills. The caller starts and stops the cron.
func NewScheduler(svc Service, schedule string, log logrus.FieldLogger) (*cron.Cron, error) {
	if log == nil {
		log = logrus.New()
	}

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(schedule, func() {
		date := time.Now().UTC().AddDate(0, 0, -1)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := svc.ComputeDaily(ctx, date); err != nil {
			log.WithError(err).WithField("date", date.Format(dateLayout)).Error("scheduled rollup failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
