package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dice_duel/internal/logger"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// channelPrefix namespaces the pub/sub channel of each key.
const channelPrefix = "roomstore:"

// Redis keeps values as plain keys and announces writes with PUBLISH on a
// per-key channel.
type Redis struct {
	client *redis.Client
	origin string
	log    *slog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisFromClient(client), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	origin := uuid.NewString()
	return &Redis{
		client: client,
		origin: origin,
		log:    logger.With("store", "redis", "origin", origin),
	}
}

func (r *Redis) Origin() string { return r.origin }

// Client exposes the underlying connection for sharing with other components.
func (r *Redis) Client() *redis.Client { return r.client }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	payload, err := json.Marshal(envelope{Key: key, Origin: r.origin, Value: value})
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, value, 0)
		p.Publish(ctx, channelPrefix+key, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Watch(ctx context.Context, key string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	ps := r.client.Subscribe(ctx, channelPrefix+key)

	// wait for the subscription confirmation so no write is missed after Watch returns
	if _, err := ps.Receive(ctx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", key, err)
	}

	out := make(chan []byte, notifyBuffer)
	msgs := ps.Channel()

	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.log.Warn("dropping bad notification", "key", key, "error", err)
					continue
				}
				if env.Origin == r.origin {
					continue
				}
				offer(out, env.Value)
			}
		}
	}()

	return newSubscription(out, cancel), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
