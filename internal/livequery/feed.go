// Package livequery fans task-list change notifications out to live
// subscribers. A notification carries no payload: subscribers re-read
// the full task list and deliver it as a complete replacement snapshot,
// so the feed never exposes diffs.
package livequery

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func channelFor(userID string) string { return "tasks:changed:" + userID }

// Feed publishes and subscribes task-list change signals per identity.
type Feed struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewFeed(rdb *redis.Client, logger *logrus.Logger) *Feed {
	return &Feed{rdb: rdb, logger: logger}
}

// TaskListChanged signals every live subscriber of an identity that the
// task set changed. Publish failures are logged and absorbed: mutations
// never fail because the fanout did.
func (f *Feed) TaskListChanged(ctx context.Context, userID string) {
	if err := f.rdb.Publish(ctx, channelFor(userID), "1").Err(); err != nil && f.logger != nil {
		f.logger.WithError(err).WithField("user_id", userID).Warn("task change publish failed")
	}
}

// Subscribe opens a change-signal stream for one identity. The handle
// stays live until Cancel is called or ctx is done.
func (f *Feed) Subscribe(ctx context.Context, userID string) *Subscription {
	ps := f.rdb.Subscribe(ctx, channelFor(userID))
	out := make(chan struct{}, 1)
	sub := NewSubscription(out, func() { _ = ps.Close() })

	go func() {
		defer close(out)
		for range ps.Channel() {
			// Coalesce: one pending signal is enough, the subscriber
			// re-reads the whole list anyway.
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	go func() {
		<-ctx.Done()
		sub.Cancel()
	}()

	return sub
}

// Subscription is a cancellable handle on one identity's change stream.
type Subscription struct {
	// Changes fires when the task set changed; closed on cancel.
	Changes <-chan struct{}

	cancel func()
	once   sync.Once
}

// NewSubscription wraps a change channel in a cancellable handle.
// cancel, if non-nil, runs once on the first Cancel.
func NewSubscription(changes <-chan struct{}, cancel func()) *Subscription {
	return &Subscription{Changes: changes, cancel: cancel}
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
