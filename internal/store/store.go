// Package store holds the Room Store contract and its backends. A store is a
// shared key-value space: every participant reads and writes whole values,
// and watchers hear about writes made by other origins only.
package store

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("store: key not found")
	ErrClosed   = errors.New("store: closed")

	ErrValueTooLarge = errors.New("store: value too large")
)

// notifyBuffer bounds pending notifications per watcher. Values are whole
// records, so when a watcher falls behind the oldest ones are dropped.
const notifyBuffer = 8

// Store is the Room Store capability consumed by the room manager and the
// synchronized session.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value for key and notifies watchers of other origins.
	Set(ctx context.Context, key string, value []byte) error
	// Watch subscribes to writes of key made by other origins.
	Watch(ctx context.Context, key string) (*Subscription, error)
	// Origin identifies this client in notifications.
	Origin() string
	Close() error
}

// Subscription delivers new values for one key until Unsubscribe is called
// or the context passed to Watch ends. C is closed afterwards.
type Subscription struct {
	C <-chan []byte

	once sync.Once
	stop func()
}

func newSubscription(ch <-chan []byte, stop func()) *Subscription {
	return &Subscription{C: ch, stop: stop}
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}

// offer pushes v without blocking, evicting the oldest pending value when
// the buffer is full.
func offer(ch chan []byte, v []byte) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// envelope is the notification payload used by the redis and postgres
// backends.
type envelope struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
	Value  []byte `json:"value"`
}
