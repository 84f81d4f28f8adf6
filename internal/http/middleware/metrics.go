package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "room_store",
			Name:      "write_limiter_allowed_total",
			Help:      "Writes let through by the rate limiter",
		},
		[]string{"route"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "room_store",
			Name:      "write_limiter_blocked_total",
			Help:      "Writes rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests, RLBlocked)
}
