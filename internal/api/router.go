package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"hostel-occupancy-backend/config"
	"hostel-occupancy-backend/internal/mw"
	"hostel-occupancy-backend/internal/occupancy"
	"hostel-occupancy-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, engine *occupancy.Engine) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, engine, &cfg.Auth, &cfg.Webhook)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authRequired := mw.Auth(db, cfg.Auth.JWTSecret)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)

		// The webhook authenticates with its own HMAC signature, not a
		// bearer token.
		api.POST("/sheets-webhook", handler.SheetsWebhook)
		api.GET("/sheets-webhook/health", handler.SheetsWebhookHealth)

		protected := api.Group("")
		protected.Use(authRequired)
		{
			protected.GET("/hostels", caching, handler.ListHostels)
			protected.GET("/hostels/:hostel_id", handler.GetHostel)
			protected.GET("/hostels/:hostel_id/floors", caching, handler.ListFloors)
			protected.GET("/hostels/:hostel_id/floors/:floor_number/rooms", handler.ListFloorRooms)

			protected.GET("/rooms/:room_id", handler.GetRoom)
			protected.POST("/rooms/:room_id/occupants", handler.AddOccupant)
			protected.DELETE("/rooms/:room_id/occupants/:occupant_id", handler.RemoveOccupant)

			protected.POST("/students", handler.CreateStudent)
			protected.GET("/students", handler.ListStudents)
			protected.GET("/students/:student_id", handler.GetStudent)
		}
	}

	return r
}
