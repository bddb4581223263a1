package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andreee-ff/saferide-go/internal/handler"
	"github.com/andreee-ff/saferide-go/internal/hub"
	"github.com/andreee-ff/saferide-go/internal/middleware"
	"github.com/andreee-ff/saferide-go/internal/service"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth           *handler.AuthHandler
	Rides          *handler.RideHandler
	Routes         *handler.RouteHandler
	Participations *handler.ParticipationHandler
	AuthService    *service.AuthService
	Hub            *hub.Hub
}

// SetupRouter wires middleware and all API routes
func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SafeRide API is running",
		})
	})

	r.POST("/api/users", h.Auth.Register)
	r.POST("/api/auth/login", h.Auth.Login)

	auth := r.Group("/api", middleware.Auth(h.AuthService))
	{
		auth.GET("/auth/me", h.Auth.Me)

		rides := auth.Group("/rides")
		{
			rides.GET("", h.Rides.List)
			rides.POST("", h.Rides.Create)
			rides.GET("/owned", h.Rides.ListOwned)
			rides.GET("/joined", h.Rides.ListJoined)
			rides.GET("/available", h.Rides.ListAvailable)
			rides.GET("/code/:code", h.Rides.GetByCode)
			rides.GET("/:id", h.Rides.Get)
			rides.PUT("/:id", h.Rides.Update)
			rides.DELETE("/:id", h.Rides.Delete)
			rides.GET("/:id/participants", h.Participations.Participants)
		}

		participations := auth.Group("/participations")
		{
			participations.GET("", h.Participations.ListMine)
			participations.POST("", h.Participations.Join)
			participations.PUT("/:id", h.Participations.UpdateLocation)
			participations.DELETE("/:id", h.Participations.Leave)
		}

		routes := auth.Group("/routes")
		{
			routes.GET("", h.Routes.List)
			routes.POST("", h.Routes.Create)
			routes.GET("/:id", h.Routes.Get)
			routes.PUT("/:id", h.Routes.Update)
			routes.DELETE("/:id", h.Routes.Delete)
		}
	}

	r.GET("/ws", hub.ServeWS(h.Hub))

	return r
}
