package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dice_duel/internal/store"
	"dice_duel/internal/ws"

	"github.com/gin-gonic/gin"
)

func newRouter() (*gin.Engine, *ws.Hub) {
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub()
	h := NewRoomStoreHandler(store.NewMemory(), hub)
	r := gin.New()
	r.GET("/rooms/:key", h.Get)
	r.PUT("/rooms/:key", h.Put)
	return r, hub
}

func do(r *gin.Engine, method, path, origin, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if origin != "" {
		req.Header.Set(store.OriginHeader, origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoomStorePutThenGet(t *testing.T) {
	r, _ := newRouter()

	if w := do(r, http.MethodGet, "/rooms/room_ABC123", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/rooms/room_ABC123", "o1", `{"status":"waiting"}`); w.Code != http.StatusNoContent {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodGet, "/rooms/room_ABC123", "", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"waiting"}` {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
}

func TestRoomStorePutRejects(t *testing.T) {
	r, _ := newRouter()
	cases := []struct {
		name, path, origin, body string
		want                     int
	}{
		{"no origin", "/rooms/room_A", "", `{}`, http.StatusBadRequest},
		{"not json", "/rooms/room_A", "o", `{"players":`, http.StatusBadRequest},
		{"bad key", "/rooms/room.A", "o", `{}`, http.StatusBadRequest},
		{"too large", "/rooms/room_A", "o", `"` + strings.Repeat("x", maxValueSize) + `"`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(r, http.MethodPut, tc.path, tc.origin, tc.body); w.Code != tc.want {
				t.Fatalf("got %d; want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRoomStorePutBroadcastsToOthers(t *testing.T) {
	r, hub := newRouter()
	writer := &ws.Client{Key: "room_A", Origin: "w", Send: make(chan []byte, 2), Hub: hub}
	reader := &ws.Client{Key: "room_A", Origin: "r", Send: make(chan []byte, 2), Hub: hub}
	hub.Register(writer)
	hub.Register(reader)

	do(r, http.MethodPut, "/rooms/room_A", "w", `{"n":1}`)

	if len(writer.Send) != 0 {
		t.Fatalf("writer heard its own write")
	}
	if got := string(<-reader.Send); got != `{"n":1}` {
		t.Fatalf("reader got %s", got)
	}
}
