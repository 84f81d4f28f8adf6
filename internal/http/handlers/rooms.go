package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"dice_duel/internal/logger"
	"dice_duel/internal/store"
	"dice_duel/internal/ws"

	"github.com/gin-gonic/gin"
)

// maxValueSize bounds a stored value; room records are a few hundred bytes.
const maxValueSize = 64 << 10

// RoomStoreHandler serves the Room Store over HTTP. Values are persisted in
// the backing store and fanned out to watchers through the hub.
type RoomStoreHandler struct {
	Store store.Store
	Hub   *ws.Hub
	log   *slog.Logger
}

func NewRoomStoreHandler(s store.Store, hub *ws.Hub) *RoomStoreHandler {
	return &RoomStoreHandler{
		Store: s,
		Hub:   hub,
		log:   logger.With("component", "room_store_http"),
	}
}

// Get returns the raw stored value.
func (h *RoomStoreHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if !ws.ValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}

	value, err := h.Store.Get(c.Request.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		h.log.Error("store get failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", value)
}

// Put replaces the stored value and notifies every watcher except the
// writer named by the origin header.
func (h *RoomStoreHandler) Put(c *gin.Context) {
	key := c.Param("key")
	if !ws.ValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	origin := c.GetHeader(store.OriginHeader)
	if origin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin header required"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxValueSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if len(body) > maxValueSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "value too large"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be JSON"})
		return
	}

	if err := h.Store.Set(c.Request.Context(), key, body); err != nil {
		h.log.Error("store set failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	n := h.Hub.Broadcast(key, origin, body)
	h.log.Debug("value written", "key", key, "origin", origin, "notified", n)

	c.Status(http.StatusNoContent)
}
