package ws

import (
	"log"
	"sync/atomic"
	"time"

	"dice_duel/internal/store"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// staleAfter is how long a watcher may stay silent, pongs included.
	staleAfter = 2 * pongWait
)

// Client is one watch connection for one key.
type Client struct {
	Key    string
	Origin string
	Conn   *websocket.Conn
	Send   chan []byte

	Hub      *Hub
	Done     chan struct{}
	lastSeen atomic.Int64
}

func NewClient(key, origin string, conn *websocket.Conn, hub *Hub) *Client {
	c := &Client{
		Key:    key,
		Origin: origin,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		Hub:    hub,
		Done:   make(chan struct{}),
	}
	c.touch()
	return c
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen is the time of the last frame or pong from the peer.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Run registers the watcher and pumps until the peer disconnects.
func (c *Client) Run() {
	// ready is queued before registering so no broadcast can overtake it
	c.Send <- store.ReadyMessage
	c.Hub.Register(c)

	go c.writePump()
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// watchers never send data; reads only drive control frames
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Client.readPump: key=%s origin=%s read error: %v", c.Key, c.Origin, err)
			}
			return
		}
		c.touch()
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: key=%s origin=%s write error: %v", c.Key, c.Origin, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
