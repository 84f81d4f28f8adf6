package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWatch upgrades GET /rooms/:key/watch?origin=... to a watch stream.
// An empty allowedOrigin accepts any browser origin.
func HandleWatch(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		key := c.Param("key")
		if !ValidKey(key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
			return
		}
		origin := c.Query("origin")
		if origin == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "origin required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ws upgrade error:", err)
			return
		}

		client := NewClient(key, origin, conn, hub)
		go client.Run()
	}
}

// ValidKey reports whether key is usable as a store key: 1..128 bytes of
// letters, digits, '_' or '-'.
func ValidKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for i := 0; i < len(key); i++ {
		ch := key[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_', ch == '-':
		default:
			return false
		}
	}
	return true
}
