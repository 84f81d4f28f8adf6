package http

import (
	"dice_duel/internal/config"
	"dice_duel/internal/http/handlers"
	"dice_duel/internal/http/middleware"
	"dice_duel/internal/store"
	"dice_duel/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the Room Store API on r. The store is the
// persistence backend; hub fans writes out to watch connections.
func RegisterRoutes(r *gin.Engine, s store.Store, hub *ws.Hub, cfg *config.Config, version string) {
	rooms := handlers.NewRoomStoreHandler(s, hub)
	healthHandler := handlers.NewHealthHandler(s, hub, cfg.StoreBackend, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/rooms/:key", rooms.Get)
	v1.PUT("/rooms/:key", middleware.WriteRateLimit(cfg.WriteRateLimit, cfg.WriteWindow()), rooms.Put)
	v1.GET("/rooms/:key/watch", ws.HandleWatch(hub, cfg.AllowedOrigin))
}

// CORS reflects the request origin, or only ALLOWED_ORIGIN when set.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+store.OriginHeader)
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
