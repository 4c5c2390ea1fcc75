package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/handler"
	"github.com/licensa/dlexam-backend/internal/middleware"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/monitoring"
	"github.com/licensa/dlexam-backend/internal/response"
	"github.com/licensa/dlexam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Session    *handler.TestSessionHandler
	MultiStage *handler.MultiStageHandler
	WS         *handler.WSHandler
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// HTTP metrics for every route.
	router.Use(monitoring.MetricsMiddleware())

	// Health check and Prometheus scrape endpoint.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", monitoring.PrometheusHandler())

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/candidate/login", handlers.Auth.CandidateLogin)
		auth.POST("/staff/login", handlers.Auth.StaffLogin)
	}

	// ─── 2. Written Test Sessions (JWT; candidates single-device) ─────
	tests := router.Group("/api/v1/tests")
	tests.Use(
		middleware.RequireAnyJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
		middleware.NoStore(),
	)
	{
		tests.POST("/sessions", handlers.Session.Start)
		tests.GET("/sessions/:session_id", handlers.Session.GetSession)
		tests.GET("/sessions/:session_id/questions/:index", handlers.Session.GetQuestion)
		tests.POST("/sessions/:session_id/answers", handlers.Session.SaveAnswer)
		tests.POST("/sessions/:session_id/submit", handlers.Session.Submit)
		tests.GET("/sessions/:session_id/result", handlers.Session.GetSessionResult)

		// Staff-only timer control and result reads.
		tests.POST("/sessions/:session_id/extend-time",
			middleware.RequirePermission(model.PermissionTestsExtendTime),
			handlers.Session.ExtendTime,
		)
		tests.POST("/sessions/:session_id/reset-time",
			middleware.RequirePermission(model.PermissionTestsExtendTime),
			handlers.Session.ResetTime,
		)
		tests.GET("/results",
			middleware.RequirePermission(model.PermissionTestsReadResults),
			handlers.Session.ListResults,
		)
		tests.GET("/results/:result_id",
			middleware.RequirePermission(model.PermissionTestsReadResults),
			handlers.Session.GetResult,
		)
	}

	// ─── 3. Multi-Stage Tests ──────────────────────────────────────────
	multiStage := router.Group("/api/v1/multi-stage-tests")
	multiStage.Use(
		middleware.RequireAnyJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
		middleware.NoStore(),
	)
	{
		multiStage.POST("/sessions", handlers.MultiStage.Start)
		multiStage.GET("/sessions/:session_id", handlers.MultiStage.GetSession)
		multiStage.POST("/sessions/:session_id/written/start", handlers.MultiStage.StartWrittenTest)
		multiStage.POST("/sessions/:session_id/written/submit", handlers.MultiStage.SubmitWrittenTest)

		multiStage.POST("/evaluate-stage",
			middleware.RequirePermission(model.PermissionStagesEvaluate),
			handlers.MultiStage.EvaluateStage,
		)
		multiStage.POST("/assign-officer",
			middleware.RequirePermission(model.PermissionStagesAssignOfficer),
			handlers.MultiStage.AssignOfficer,
		)
		multiStage.GET("/my-assignments",
			middleware.RequirePermission(model.PermissionStagesEvaluate),
			handlers.MultiStage.ListMyAssignments,
		)
		multiStage.GET("/sessions/:session_id/stage-results",
			middleware.RequirePermission(model.PermissionTestsReadResults),
			handlers.MultiStage.ListStageResults,
		)
	}

	// ─── 4. Read-only staff lookups ────────────────────────────────────
	lookups := router.Group("/api/v1")
	lookups.Use(middleware.RequireStaffJWT(authService))
	{
		lookups.GET("/evaluation-criteria", handlers.MultiStage.ListCriteria)
		lookups.POST("/staff/candidates/:candidate_id/reset-login", handlers.Auth.ResetCandidateLogin)
	}

	// ─── 5. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSAuth(authService),
		middleware.RequirePermission(model.PermissionSessionsMonitor),
	)
	{
		ws.GET("/sessions/:session_id/monitor", handlers.WS.MonitorSession)
	}

	return router
}
