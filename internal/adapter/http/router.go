package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/adapter/http/middleware"
)

type RouterDeps struct {
	BroadcastHandler *BroadcastHandler
	TrackingHandler  *TrackingHandler
	HealthHandler    *HealthHandler
	WebSocketHandler *WebSocketHandler
	Logger           *zap.Logger
	JWTSecret        string
	APIRateLimit     int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logging(deps.Logger))

	r.GET("/health", deps.HealthHandler.Liveness)
	r.GET("/health/ready", deps.HealthHandler.Readiness)

	r.GET("/ws", deps.WebSocketHandler.Handle)

	// anonymous tracking: no auth, no rate limit, always succeeds
	track := r.Group("/track")
	{
		track.GET("/read/:id/:recipient", deps.TrackingHandler.TrackRead)
		track.GET("/click/:id/:recipient", deps.TrackingHandler.TrackClick)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(deps.APIRateLimit))
	v1.Use(middleware.JWTAuth(deps.JWTSecret))
	{
		broadcasts := v1.Group("/sent-broadcasts")
		{
			broadcasts.POST("", deps.BroadcastHandler.CreateSent)
			broadcasts.GET("", deps.BroadcastHandler.List)
			broadcasts.GET("/:id", deps.BroadcastHandler.GetByID)
		}
	}

	return r
}
