package ws

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	watchersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "room_store",
		Name:      "watchers",
		Help:      "Open watch connections",
	})
	broadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "room_store",
		Name:      "broadcasts_total",
		Help:      "Values queued to watchers, by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(watchersGauge, broadcastsTotal)
}

// Hub tracks watch connections per store key and fans writes out to every
// watcher except the writer.
type Hub struct {
	watchers map[string]map[*Client]struct{}
	mu       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[c.Key]
	if !ok {
		set = make(map[*Client]struct{})
		h.watchers[c.Key] = set
	}
	set[c] = struct{}{}
	watchersGauge.Inc()
	log.Printf("Hub.Register: key=%s origin=%s watchers=%d", c.Key, c.Origin, len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[c.Key]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	watchersGauge.Dec()
	if len(set) == 0 {
		delete(h.watchers, c.Key)
	}
	log.Printf("Hub.Unregister: key=%s origin=%s watchers=%d", c.Key, c.Origin, len(set))
}

// Broadcast queues value for every watcher of key whose origin differs from
// the writer's. Watchers with a full queue are skipped; delivery is best
// effort. Returns how many watchers were notified.
func (h *Hub) Broadcast(key, origin string, value []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.watchers[key] {
		if c.Origin != "" && c.Origin == origin {
			continue
		}
		select {
		case c.Send <- value:
			sent++
			broadcastsTotal.WithLabelValues("queued").Inc()
		default:
			broadcastsTotal.WithLabelValues("dropped").Inc()
			log.Printf("Hub.Broadcast: key=%s origin=%s queue full, dropping", key, c.Origin)
		}
	}
	return sent
}

// Count returns the number of watchers of key.
func (h *Hub) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[key])
}

// Total returns the number of open watch connections.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.watchers {
		n += len(set)
	}
	return n
}

// StartCleanup periodically drops watchers whose connection went quiet
// without a close frame.
func (h *Hub) StartCleanup(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				h.cleanupStale(time.Now())
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (h *Hub) cleanupStale(now time.Time) {
	h.mu.RLock()
	var stale []*Client
	for _, set := range h.watchers {
		for c := range set {
			if now.Sub(c.LastSeen()) > staleAfter {
				stale = append(stale, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		log.Printf("cleaned up stale watcher: key=%s origin=%s", c.Key, c.Origin)
		h.Unregister(c)
		c.Conn.Close()
	}
}
