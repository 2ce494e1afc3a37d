package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/handler"
	"github.com/studika/gradebook-backend/internal/middleware"
	"github.com/studika/gradebook-backend/internal/response"
	"github.com/studika/gradebook-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Grade      *handler.GradeHandler
	Subject    *handler.SubjectHandler
	Student    *handler.StudentHandler
	Assignment *handler.AssignmentHandler
	AdminUser  *handler.AdminUserHandler
	Audit      *handler.AuditHandler
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the login route (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated session routes
		auth.POST("/logout", middleware.RequireSession(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireSession(authService), handlers.Auth.Me)
	}

	// ─── 2. Staff Group (Session) ──────────────────────────────────────
	// Read endpoints plus mark recording; the mark route does its own
	// per-resource permission check inside the handler.
	api := router.Group("/api/v1")
	api.Use(middleware.RequireSession(authService))
	{
		api.GET("/subjects", handlers.Subject.List)
		api.GET("/subjects/year-weights", handlers.Subject.YearWeights)

		api.GET("/students", handlers.Student.List)
		api.GET("/students/:student_id", handlers.Student.Get)
		api.GET("/students/:student_id/report", handlers.Grade.Report)
		api.GET("/students/:student_id/grades/year/:year", handlers.Grade.YearGrade)
		api.GET("/students/:student_id/grades/graduation", handlers.Grade.GraduationGrade)

		api.GET("/students/:student_id/subjects/:subject_id/mark", handlers.Grade.GetMark)
		api.PUT("/students/:student_id/subjects/:subject_id/mark", handlers.Grade.RecordMark)

		api.GET("/assignments/mine", handlers.Assignment.ListMine)
	}

	// ─── 3. Admin Group (Session + Admin Role) ─────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireSession(authService), middleware.RequireAdmin())
	{
		// Subject management
		adminAPI.POST("/subjects", handlers.Subject.Create)
		adminAPI.PUT("/subjects/:id", handlers.Subject.Update)
		adminAPI.DELETE("/subjects/:id", handlers.Subject.Delete)

		// Student management
		adminAPI.POST("/students", handlers.Student.Create)
		adminAPI.PUT("/students/:id", handlers.Student.Update)
		adminAPI.DELETE("/students/:id", handlers.Student.Delete)

		// Teacher assignments
		adminAPI.GET("/assignments", handlers.Assignment.List)
		adminAPI.POST("/assignments", handlers.Assignment.Create)
		adminAPI.DELETE("/assignments/:id", handlers.Assignment.Delete)

		// Staff accounts
		adminAPI.GET("/users", handlers.AdminUser.List)
		adminAPI.POST("/users", handlers.AdminUser.Create)
		adminAPI.POST("/users/:id/deactivate", handlers.AdminUser.Deactivate)
		adminAPI.POST("/users/:id/reset-password", handlers.AdminUser.ResetPassword)

		// Audit trail
		adminAPI.GET("/audit", handlers.Audit.List)
	}

	// ─── 4. WebSocket Group (Session via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireSession(authService), middleware.RequireAdmin())
	{
		ws.GET("/audit/stream", handlers.Audit.Stream)
	}

	return router
}
