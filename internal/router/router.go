package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/handler"
	"github.com/emergency0committee-hub/eec-backend/internal/middleware"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Gate    *handler.GateHandler
	Portal  *handler.PortalHandler
	Auth    *handler.AuthHandler
	Codes   *handler.CodesHandler
	Results *handler.ResultsHandler
	Setting *handler.SettingHandler
	Bank    *handler.BankHandler
	Monitor *handler.MonitorHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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

	// Apply brotli middleware globally. SSE and WebSocket routes skip
	// themselves inside the middleware.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(60))
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
	}

	// Rate limiter for the gate (20 attempts per minute per IP) so access
	// codes cannot be brute-forced.
	gateLimiter := middleware.NewRateLimiter(20, time.Minute)

	// ─── 1. Gate Group (Public, Rate Limited) ──────────────────────────
	gate := router.Group("/api/v1/gate")
	gate.Use(gateLimiter.Middleware())
	{
		gate.POST("/verify", handlers.Gate.VerifyCode)
	}

	// ─── 2. Staff Auth Group ───────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/staff/login", handlers.Auth.StaffLogin)
		auth.GET("/staff/me", middleware.RequireStaffJWT(authService), handlers.Auth.GetStaffProfile)
	}

	// ─── 3. Participant Group (Session-Bound JWT) ──────────────────────
	portalAPI := router.Group("/api/v1/portal")
	portalAPI.Use(middleware.RequireParticipantJWT(authService))
	{
		portalAPI.GET("/paper", handlers.Portal.GetPaper)
		portalAPI.POST("/start", handlers.Portal.StartSession)
		portalAPI.GET("/state", handlers.Portal.GetState)
		portalAPI.POST("/answers", handlers.Portal.RecordAnswer)
		portalAPI.POST("/navigate", handlers.Portal.Navigate)
		portalAPI.GET("/summary", handlers.Portal.GetSummary)
		portalAPI.POST("/end", handlers.Portal.EndSession)
	}

	// ─── 4. WebSocket Group (Participant WS Auth) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireParticipantWSAuth(authService))
	{
		ws.GET("/portal/stream", handlers.WS.SessionStream)
	}

	// ─── 5. Staff Group (Staff JWT) ────────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		staffAPI.GET("/dashboard", handlers.Results.GetDashboard)

		staffAPI.GET("/results", handlers.Results.ListResults)
		staffAPI.GET("/results/:id", handlers.Results.GetResult)

		staffAPI.POST("/codes", handlers.Codes.GenerateCodes)
		staffAPI.GET("/codes", handlers.Codes.ListCodes)
		staffAPI.GET("/codes/rotating", handlers.Codes.GetRotating)

		staffAPI.POST("/bank/refresh", handlers.Bank.RefreshCache)

		staffAPI.GET("/settings", handlers.Setting.GetAllSettings)
		staffAPI.PUT("/settings", handlers.Setting.UpdateSettings)

		staffAPI.GET("/monitor/live", handlers.Monitor.LiveSessionsSSE)
	}

	return router
}
