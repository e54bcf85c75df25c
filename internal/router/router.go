package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
	"github.com/nirwairkumar/nkc-assess-backend/internal/handler"
	"github.com/nirwairkumar/nkc-assess-backend/internal/middleware"
	"github.com/nirwairkumar/nkc-assess-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session     *handler.SessionHandler
	Leaderboard *handler.LeaderboardHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Session opens are the expensive path (repository load, attempt count,
	// snapshot read); keep a cohort of candidates from hammering it.
	openLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Session Group (JWT) ────────────────────────────────────────
	api := router.Group("/api/v1/tests/:test_id")
	api.Use(middleware.RequireIdentity(cfg.JWTSecret))
	{
		api.POST("/session", openLimiter.Middleware(), handlers.Session.Open)
		api.POST("/session/resume", handlers.Session.Resume)
		api.GET("/session", handlers.Session.State)
		api.PUT("/session/answers/:question_id", handlers.Session.Answer)
		api.DELETE("/session/answers/:question_id", handlers.Session.ClearAnswer)
		api.POST("/session/review/:question_id", handlers.Session.ToggleReview)
		api.POST("/session/navigate", handlers.Session.Navigate)
		api.POST("/session/violations", handlers.Session.ReportViolation)
		api.POST("/session/submit", handlers.Session.Submit)

		// Results. Attempt lists change only on submission; a short shared
		// cache keeps leaderboard polling cheap.
		api.GET("/attempts", middleware.CacheControl(15), handlers.Leaderboard.Attempts)
		api.GET("/leaderboard", middleware.CacheControl(15), handlers.Leaderboard.Leaderboard)
	}

	// ─── 2. WebSocket Group (Query-Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSIdentity(cfg.JWTSecret))
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.SessionStream)
	}

	return router
}
