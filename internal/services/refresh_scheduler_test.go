package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshSchedulerNext(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s := NewRefreshScheduler("*/30 * * * *", nil, log)

	ref := time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)
	next, err := s.Next(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), next)

	next, err = s.Next(next)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), next)
}

func TestRefreshSchedulerRunKeepsGoingAfterFailures(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	refresher := RefresherFunc(func(context.Context) error {
		if calls.Add(1) >= 3 {
			cancel()
		}
		return errors.New("upstream down")
	})

	s := NewRefreshScheduler("* * * * *", refresher, log)
	var waits []time.Duration
	s.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	assert.GreaterOrEqual(t, calls.Load(), int32(3))
	for _, d := range waits {
		assert.LessOrEqual(t, d, time.Minute)
	}
	var failures int
	for _, e := range hook.AllEntries() {
		if e.Message == "Scheduled catalog refresh failed" {
			failures++
		}
	}
	assert.GreaterOrEqual(t, failures, 3)
}

func TestRefreshSchedulerStopsOnInvalidExpression(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	var calls atomic.Int32
	s := NewRefreshScheduler("not a cron", RefresherFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), log)

	s.Run(context.Background())
	assert.Zero(t, calls.Load())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Invalid refresh schedule, scheduler stopped", hook.LastEntry().Message)
}
