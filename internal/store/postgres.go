package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"dice_duel/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel is the LISTEN/NOTIFY channel shared by all keys.
const notifyChannel = "room_store_changes"

// Postgres keeps values in the room_store table and announces writes with
// pg_notify. Notifications are delivered at commit, after the value is
// visible to readers.
type Postgres struct {
	db     *pgxpool.Pool
	origin string
	log    *slog.Logger
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	origin := uuid.NewString()
	return &Postgres{
		db:     db,
		origin: origin,
		log:    logger.With("store", "postgres", "origin", origin),
	}
}

func (p *Postgres) Origin() string { return p.origin }

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx,
		`SELECT value FROM room_store WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	payload, err := json.Marshal(envelope{Key: key, Origin: p.origin, Value: value})
	if err != nil {
		return err
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO room_store (key, value, origin, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, origin = EXCLUDED.origin, updated_at = now()`,
		key, value, p.origin,
	)
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("postgres notify %s: %w", key, err)
	}

	return tx.Commit(ctx)
}

// Watch holds one pooled connection in LISTEN mode for the life of the
// subscription.
func (p *Postgres) Watch(ctx context.Context, key string) (*Subscription, error) {
	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("postgres listen: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []byte, notifyBuffer)

	go func() {
		defer close(out)
		defer func() {
			// connection was interrupted mid-wait; do not hand it back in LISTEN state
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.log.Warn("listen stopped", "key", key, "error", err)
				}
				return
			}

			var env envelope
			if err := json.Unmarshal([]byte(n.Payload), &env); err != nil {
				p.log.Warn("dropping bad notification", "error", err)
				continue
			}
			if env.Key != key || env.Origin == p.origin {
				continue
			}
			offer(out, env.Value)
		}
	}()

	return newSubscription(out, cancel), nil
}

// Close is a no-op; the pool belongs to the caller.
func (p *Postgres) Close() error {
	return nil
}
