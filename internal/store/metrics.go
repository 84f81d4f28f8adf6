package store

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_store_operations_total",
			Help: "Room store operations by backend, operation and result",
		},
		[]string{"backend", "op", "result"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_store_notifications_total",
			Help: "Change notifications delivered to watchers",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(OpsTotal)
	prometheus.MustRegister(NotificationsTotal)
}

// Instrumented counts every call on the wrapped store.
type Instrumented struct {
	Store
	backend string
}

func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{Store: s, backend: backend}
}

func (i *Instrumented) observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	OpsTotal.WithLabelValues(i.backend, op, result).Inc()
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := i.Store.Get(ctx, key)
	i.observe("get", err)
	return v, err
}

func (i *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	err := i.Store.Set(ctx, key, value)
	i.observe("set", err)
	return err
}

func (i *Instrumented) Watch(ctx context.Context, key string) (*Subscription, error) {
	sub, err := i.Store.Watch(ctx, key)
	i.observe("watch", err)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte, notifyBuffer)
	counter := NotificationsTotal.WithLabelValues(i.backend)
	go func() {
		defer close(out)
		for v := range sub.C {
			counter.Inc()
			offer(out, v)
		}
	}()
	return newSubscription(out, sub.Unsubscribe), nil
}
