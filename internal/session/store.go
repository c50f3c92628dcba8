// Package session holds the authenticated-session records and the
// auth-state notification stream. Every sign-in and sign-out transition
// is pushed to watchers; nothing polls. Watchers hold a cancellable
// handle and must release it on teardown.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	eventsChannel = "session:events"
	keyPrefix     = "user:session:"
	recordTTL     = 24 * time.Hour
)

// EventType classifies an auth-state transition.
type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is a single auth-state transition, published on every sign-in
// and sign-out.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
}

// Session is the record of one authenticated identity.
type Session struct {
	UserID    string
	Email     string
	SID       string
	CreatedAt time.Time
}

// Store is the process-wide session store. It is constructed once at
// startup and passed explicitly to everything that needs it.
type Store struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewStore(rdb *redis.Client, logger *logrus.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func key(userID string) string { return keyPrefix + userID }

// Put records a fresh session and publishes the signed-in transition.
func (s *Store) Put(ctx context.Context, sess Session) error {
	fields := map[string]any{
		"user_id":    sess.UserID,
		"email":      sess.Email,
		"sid":        sess.SID,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	k := key(sess.UserID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, k, fields)
	pipe.Expire(ctx, k, recordTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	s.publish(ctx, Event{Type: SignedIn, UserID: sess.UserID})
	return nil
}

// Current returns the active session for an identity, or nil when there
// is none.
func (s *Store) Current(ctx context.Context, userID string) (*Session, error) {
	data, err := s.rdb.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	sess := &Session{
		UserID: data["user_id"],
		Email:  data["email"],
		SID:    data["sid"],
	}
	if t, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		sess.CreatedAt = t
	}
	return sess, nil
}

// Delete drops the session record and publishes the signed-out
// transition. Watchers holding per-identity state (live task feeds)
// clear it when they see this event.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return err
	}
	s.publish(ctx, Event{Type: SignedOut, UserID: userID})
	return nil
}

func (s *Store) publish(ctx context.Context, ev Event) {
	b, _ := json.Marshal(ev)
	if err := s.rdb.Publish(ctx, eventsChannel, b).Err(); err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("user_id", ev.UserID).Warn("session event publish failed")
	}
}

// Watch subscribes to the auth-state stream. The returned handle stays
// live until Cancel is called or ctx is done; both release the
// underlying subscription.
func (s *Store) Watch(ctx context.Context) *Watch {
	ps := s.rdb.Subscribe(ctx, eventsChannel)
	out := make(chan Event, 8)
	w := NewWatch(out, func() { _ = ps.Close() })

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		w.Cancel()
	}()

	return w
}

// Watch is a cancellable handle on the auth-state stream.
type Watch struct {
	// Events delivers transitions until the watch is cancelled, then
	// the channel is closed.
	Events <-chan Event

	cancel func()
	once   sync.Once
}

// NewWatch wraps an event channel in a cancellable handle. cancel, if
// non-nil, runs once on the first Cancel.
func NewWatch(events <-chan Event, cancel func()) *Watch {
	return &Watch{Events: events, cancel: cancel}
}

// Cancel releases the subscription. Safe to call more than once.
func (w *Watch) Cancel() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
}
