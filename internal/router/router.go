package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/handler"
	"github.com/evaluia/examcore-backend/internal/middleware"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Portal     *handler.PortalHandler
	AdminExam  *handler.AdminExamHandler
	AdminTest  *handler.AdminTestHandler
	AdminUser  *handler.AdminUserHandler
	Credential *handler.CredentialHandler
	Report     *handler.ReportHandler
	Ops        *handler.OpsHandler
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
	router.Use(response.RequestID())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the credential-bearing auth routes.
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.POST("/participant/login", handlers.Auth.ParticipantLogin)
		auth.POST("/credential/login", handlers.Auth.CredentialLogin)

		// Authenticated profile routes
		auth.POST("/participant/logout", middleware.RequireParticipantJWT(authService), handlers.Auth.ParticipantLogout)
		auth.GET("/participant/me", middleware.RequireParticipantJWT(authService), handlers.Auth.Me)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Portal Group (Participant JWT + Single Device) ─────────────
	portalAPI := router.Group("/api/v1/portal")
	portalAPI.Use(
		middleware.RequireParticipantJWT(authService),
		middleware.RequireActiveLogin(authService),
	)
	{
		portalAPI.GET("/sessions", handlers.Portal.ListSessions)
		portalAPI.POST("/sessions", handlers.Portal.CreateSession)
		portalAPI.GET("/sessions/:session_id", handlers.Portal.GetSession)
		portalAPI.POST("/sessions/:session_id/start", handlers.Portal.StartSession)
		portalAPI.POST("/submissions", handlers.Portal.Submit)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/ops/stream", handlers.WS.OpsStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam management
		adminAPI.GET("/exams",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.AdminExam.List,
		)
		adminAPI.POST("/exams",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.AdminExam.Create,
		)
		adminAPI.GET("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.AdminExam.Get,
		)
		adminAPI.PUT("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.AdminExam.Update,
		)
		adminAPI.POST("/exams/:exam_id/activate",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.AdminExam.Activate,
		)
		adminAPI.POST("/exams/:exam_id/deactivate",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.AdminExam.Deactivate,
		)
		adminAPI.DELETE("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.AdminExam.Delete,
		)

		// Psychometric test management
		adminAPI.GET("/tests",
			middleware.RequirePermission(model.PermissionTestsRead),
			handlers.AdminTest.List,
		)
		adminAPI.POST("/tests",
			middleware.RequirePermission(model.PermissionTestsWrite),
			handlers.AdminTest.Create,
		)
		adminAPI.GET("/tests/:test_id",
			middleware.RequirePermission(model.PermissionTestsRead),
			handlers.AdminTest.Get,
		)
		adminAPI.PUT("/tests/:test_id",
			middleware.RequirePermission(model.PermissionTestsWrite),
			handlers.AdminTest.Update,
		)
		adminAPI.POST("/tests/:test_id/activate",
			middleware.RequirePermission(model.PermissionTestsWrite),
			handlers.AdminTest.Activate,
		)
		adminAPI.POST("/tests/:test_id/deactivate",
			middleware.RequirePermission(model.PermissionTestsWrite),
			handlers.AdminTest.Deactivate,
		)
		adminAPI.DELETE("/tests/:test_id",
			middleware.RequirePermission(model.PermissionTestsWrite),
			handlers.AdminTest.Delete,
		)

		// User and assignment management
		adminAPI.GET("/users",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.AdminUser.List,
		)
		adminAPI.POST("/users",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.AdminUser.Create,
		)
		adminAPI.POST("/users/:user_id/reset-login",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.AdminUser.ResetLogin,
		)
		adminAPI.POST("/users/:user_id/enable-login",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.AdminUser.EnableLogin,
		)
		adminAPI.POST("/assignments",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.AdminUser.Assign,
		)

		// Credential issuance
		adminAPI.GET("/credentials",
			middleware.RequirePermission(model.PermissionCredentialsIssue),
			handlers.Credential.List,
		)
		adminAPI.POST("/credentials",
			middleware.RequirePermission(model.PermissionCredentialsIssue),
			handlers.Credential.Issue,
		)

		// Reports
		adminAPI.GET("/sessions/:session_id/report",
			middleware.RequirePermission(model.PermissionReportsRead),
			handlers.Report.GetBySession,
		)

		// Operational surface
		adminAPI.GET("/ops/network",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.NetworkStatus,
		)
		adminAPI.POST("/ops/network/online",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.SetOnline,
		)
		adminAPI.POST("/ops/network/offline",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.SetOffline,
		)
		adminAPI.GET("/ops/queue",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.ListQueue,
		)
		adminAPI.POST("/ops/queue/replay",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.Replay,
		)
		adminAPI.DELETE("/ops/queue/exhausted",
			middleware.RequirePermission(model.PermissionSessionsPurge),
			handlers.Ops.PurgeExhausted,
		)
		adminAPI.DELETE("/ops/queue",
			middleware.RequirePermission(model.PermissionSessionsPurge),
			handlers.Ops.PurgeAll,
		)
		adminAPI.POST("/ops/sessions/:session_id/reconcile",
			middleware.RequirePermission(model.PermissionQueueManage),
			handlers.Ops.Reconcile,
		)
	}

	return router
}
