package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Bus is an in-process shared key-value space. Each Connect returns a client
// with its own origin, the way separate processes share one external store.
type Bus struct {
	mu       sync.Mutex
	data     map[string][]byte
	watchers map[string][]*memWatcher
}

type memWatcher struct {
	origin string
	ch     chan []byte
}

func NewBus() *Bus {
	return &Bus{
		data:     make(map[string][]byte),
		watchers: make(map[string][]*memWatcher),
	}
}

// Connect returns a new client of the bus.
func (b *Bus) Connect() *Memory {
	return &Memory{bus: b, origin: uuid.NewString()}
}

// NewMemory is a single client on a private bus.
func NewMemory() *Memory {
	return NewBus().Connect()
}

// Memory is one client of a Bus.
type Memory struct {
	bus    *Bus
	origin string

	mu     sync.Mutex
	closed bool
	subs   []*Subscription
}

func (m *Memory) Origin() string { return m.origin }

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()

	v, ok := m.bus.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.bus.set(m.origin, key, value)
}

func (b *Bus) set(origin, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[key] = slices.Clone(value)
	for _, w := range b.watchers[key] {
		if w.origin == origin {
			continue
		}
		offer(w.ch, slices.Clone(value))
	}
	return nil
}

func (m *Memory) Watch(ctx context.Context, key string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	w := &memWatcher{origin: m.origin, ch: make(chan []byte, notifyBuffer)}
	m.bus.mu.Lock()
	m.bus.watchers[key] = append(m.bus.watchers[key], w)
	m.bus.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	remove := func() {
		once.Do(func() {
			m.bus.mu.Lock()
			m.bus.watchers[key] = slices.DeleteFunc(m.bus.watchers[key], func(x *memWatcher) bool { return x == w })
			if len(m.bus.watchers[key]) == 0 {
				delete(m.bus.watchers, key)
			}
			close(w.ch)
			m.bus.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		remove()
	}()

	sub := newSubscription(w.ch, cancel)
	m.subs = append(m.subs, sub)
	return sub, nil
}

// Close ends every subscription opened by this client.
func (m *Memory) Close() error {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.closed = true
	m.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	return nil
}
