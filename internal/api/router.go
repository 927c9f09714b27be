package api

import (
	"net/http"

	"smart_toll/internal/api/handler"
	"smart_toll/internal/api/middleware"
	"smart_toll/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// SetupBoothRouter serves the capture endpoints of one toll booth.
func SetupBoothRouter(tolls *handler.TollHandler) *gin.Engine {
	r := newEngine()
	r.POST("/capture-trigger", tolls.CaptureTrigger)
	r.GET("/capture", tolls.Capture)
	return r
}

// SetupGeoRouter serves the rendezvous, the account API and the operator routes.
func SetupGeoRouter(geo *handler.GeoHandler, accounts *handler.AccountHandler, auth *handler.AuthHandler,
	stations *handler.StationHandler, authMw *middleware.AuthMiddleware, callbackLimiter *middleware.RateLimiter) *gin.Engine {
	r := newEngine()

	r.GET("/getUserCoords", geo.GetUserCoords)
	r.POST("/set-latlon", callbackLimiter.Handler(), geo.SetLatLon)

	r.POST("/add_user", accounts.AddUser)
	r.GET("/get_user_info", accounts.GetUserInfo)
	r.GET("/get_balance", accounts.GetBalance)
	r.GET("/update_balance", accounts.UpdateBalance)
	r.GET("/my_cars", accounts.MyCars)
	r.POST("/add_license_plate", accounts.AddLicensePlate)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authMw.Authenticate(), authMw.AuthorizeRole(domain.RoleAdmin), auth.Register)
		authRoutes.POST("/login", auth.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		stationRoutes := v1.Group("/stations")
		{
			stationRoutes.POST("", authMw.AuthorizeRole(domain.RoleAdmin), stations.SaveStation)
			stationRoutes.GET("/:id", stations.GetStation)
		}
	}
	return r
}

// SetupBridgeRouter serves the websocket bridge for Geo Reporter Clients.
func SetupBridgeRouter(hub *handler.GeoReporterHub) *gin.Engine {
	r := newEngine()
	r.GET("/ws", hub.HandleWebSocket)
	r.GET("/trigger", hub.Trigger)
	return r
}
