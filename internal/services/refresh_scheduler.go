package services

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"github.com/sirupsen/logrus"
)

// Refresher is what the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

// RefreshScheduler triggers a catalog refresh on every tick of a cron expression.
type RefreshScheduler struct {
	expr      string
	refresher Refresher
	log       logrus.FieldLogger
	now       func() time.Time
	after     func(d time.Duration) <-chan time.Time
}

func NewRefreshScheduler(expr string, refresher Refresher, log logrus.FieldLogger) *RefreshScheduler {
	return &RefreshScheduler{
		expr:      expr,
		refresher: refresher,
		log:       log.WithField("component", "refresh_scheduler"),
		now:       time.Now,
		after:     time.After,
	}
}

// Next returns the first tick strictly after ref.
func (s *RefreshScheduler) Next(ref time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.expr, ref, false)
}

// Run blocks until ctx is done. Refresh failures are logged and the schedule continues.
func (s *RefreshScheduler) Run(ctx context.Context) {
	for {
		next, err := s.Next(s.now())
		if err != nil {
			s.log.WithError(err).WithField("cron", s.expr).Error("Invalid refresh schedule, scheduler stopped")
			return
		}
		s.log.WithField("next", next.Format(time.RFC3339)).Debug("Next catalog refresh scheduled")

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(s.now())):
		}

		if err := s.refresher.Refresh(ctx); err != nil {
			s.log.WithError(err).Warn("Scheduled catalog refresh failed")
		}
	}
}
