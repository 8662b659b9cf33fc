package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travel-admin/auth"
	"travel-admin/controllers"
	"travel-admin/metrics"
	"travel-admin/middleware"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth    *controllers.AuthController
	Profile *controllers.ProfileController
	Trips   *controllers.TripController
	Upload  *controllers.UploadController

	Tokens  *auth.TokenService
	Metrics *metrics.Metrics
	Log     *slog.Logger

	CORSOrigins       []string
	ProtectedPrefixes []string
	LoginPath         string
	AuthRateLimit     int

	// UploadDir is served at UploadURLPrefix when set (local blob storage).
	UploadDir       string
	UploadURLPrefix string
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		cors.New(corsConfig(d.CORSOrigins)),
		middleware.SessionGate(d.Tokens, d.ProtectedPrefixes, d.LoginPath),
	)

	if d.UploadDir != "" && d.UploadURLPrefix != "" {
		r.Static(d.UploadURLPrefix, d.UploadDir)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	session := middleware.RequireSession(d.Tokens)

	authGroup := r.Group("/auth", middleware.RateLimit(d.AuthRateLimit))
	{
		authGroup.POST("/login", d.Auth.Login)
		authGroup.POST("/logout", d.Auth.Logout)
		authGroup.POST("/forgot-password", d.Auth.ForgotPassword)
		authGroup.POST("/reset-password", d.Auth.ResetPassword)
		authGroup.POST("/change-password", session, d.Auth.ChangePassword)
		authGroup.POST("/change-email", session, d.Auth.ChangeEmail)
	}

	admin := r.Group("/admin", session)
	{
		admin.GET("/profile", d.Profile.GetProfile)
		admin.PUT("/profile", d.Profile.UpdateProfile)
	}

	trips := r.Group("/trips")
	{
		trips.GET("", d.Trips.GetTrips)
		trips.GET("/:id", d.Trips.GetTrip)
		trips.POST("", session, d.Trips.CreateTrip)
		trips.PUT("/:id", session, d.Trips.UpdateTrip)
		trips.DELETE("/:id", session, d.Trips.DeleteTrip)
	}

	r.POST("/upload", session, d.Upload.Upload)

	// SessionGate redirects browsers first; RequireSession covers a gate
	// configured without /dashboard.
	r.GET("/dashboard", session, d.Profile.Dashboard)

	return r
}
