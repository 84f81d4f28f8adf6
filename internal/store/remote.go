package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dice_duel/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// OriginHeader carries the writer identity on remote writes.
const OriginHeader = "X-Store-Origin"

// maxValueSize bounds a single stored value on the wire.
const maxValueSize = 64 << 10

// Remote talks to a store server (cmd/app): HTTP for get/set and a
// websocket per watched key.
type Remote struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	origin  string
	log     *slog.Logger
}

// NewRemote builds a client for a store server at baseURL (http or https).
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	origin := uuid.NewString()
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		dialer:  websocket.DefaultDialer,
		origin:  origin,
		log:     logger.With("store", "remote", "origin", origin),
	}
}

func (r *Remote) Origin() string { return r.origin }

func (r *Remote) keyURL(key string) string {
	return r.baseURL + "/api/v1/rooms/" + url.PathEscape(key)
}

func (r *Remote) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.keyURL(key), nil)
	if err != nil {
		return nil, err
	}
	res, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote get %s: %w", key, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		value, err := io.ReadAll(io.LimitReader(res.Body, maxValueSize+1))
		if err != nil {
			return nil, fmt.Errorf("remote get %s: %w", key, err)
		}
		if len(value) > maxValueSize {
			return nil, fmt.Errorf("remote get %s: %w", key, ErrValueTooLarge)
		}
		return value, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("remote get %s: unexpected status %d", key, res.StatusCode)
	}
}

func (r *Remote) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > maxValueSize {
		return fmt.Errorf("remote set %s: %w", key, ErrValueTooLarge)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.keyURL(key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OriginHeader, r.origin)

	res, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote set %s: %w", key, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		return fmt.Errorf("remote set %s: unexpected status %d", key, res.StatusCode)
	}
	return nil
}

func (r *Remote) watchURL(key string) (string, error) {
	u, err := url.Parse(r.keyURL(key) + "/watch")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("origin", r.origin)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Remote) Watch(ctx context.Context, key string) (*Subscription, error) {
	wsURL, err := r.watchURL(key)
	if err != nil {
		return nil, err
	}
	conn, _, err := r.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remote watch %s: %w", key, err)
	}

	// the server sends {"type":"ready"} once the watcher is registered
	if err := awaitReady(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote watch %s: %w", key, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []byte, notifyBuffer)

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	go func() {
		defer close(out)
		conn.SetReadLimit(maxValueSize)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					r.log.Warn("watch stream ended", "key", key, "error", err)
				}
				cancel()
				return
			}
			offer(out, msg)
		}
	}()

	return newSubscription(out, cancel), nil
}

func awaitReady(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if !bytes.Equal(msg, ReadyMessage) {
		return fmt.Errorf("unexpected handshake %q", msg)
	}
	return nil
}

// ReadyMessage is the first frame of every watch stream.
var ReadyMessage = []byte(`{"type":"ready"}`)

func (r *Remote) Close() error {
	r.http.CloseIdleConnections()
	return nil
}
