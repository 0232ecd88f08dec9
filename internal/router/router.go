package router

import (
	"net/http"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/handler"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Exam          *handler.ExamHandler
	StudentPortal *handler.StudentPortalHandler
	Submission    *handler.SubmissionHandler
	Exec          *handler.ExecHandler
	Proctor       *handler.ProctorHandler
	Training      *handler.TrainingHandler
	Schedule      *handler.ScheduleHandler
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/register", handlers.Auth.RegisterStudent)
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/exams", handlers.StudentPortal.ListExams)
		studentAPI.GET("/exams/:id", handlers.StudentPortal.GetExam)
		studentAPI.POST("/submissions", handlers.Submission.Submit)
		studentAPI.GET("/results", handlers.Submission.ListMyResults)
		studentAPI.POST("/execute", handlers.Exec.Run)
		studentAPI.GET("/execute/languages", middleware.CacheControl(3600), handlers.Exec.Languages)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentWSAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/student/exams/:id/proctor", handlers.Proctor.Stream)
	}

	// ─── 4. Shared Reads (Any Authenticated Principal) ─────────────────
	// Training videos and schedule documents are readable by students and
	// admins alike; writes stay admin-only.
	sharedAPI := router.Group("/api/v1")
	sharedAPI.Use(middleware.RequireAnyJWT(authService))
	{
		sharedAPI.GET("/training/folders", handlers.Training.ListFolders)
		sharedAPI.GET("/training/folders/:id/videos", handlers.Training.ListVideos)
		// Stored video files never change; let players cache aggressively.
		sharedAPI.GET("/training/videos/:id/stream", middleware.CacheControl(86400), handlers.Training.Stream)

		sharedAPI.GET("/schedule/folders", handlers.Schedule.ListFolders)
		sharedAPI.GET("/schedule/folders/:id/documents", handlers.Schedule.ListDocuments)
		sharedAPI.GET("/schedule/documents/:id/download", handlers.Schedule.Download)
	}

	// ─── 5. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam authoring
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.GET("/exams/:id", handlers.Exam.Get)
		adminAPI.PUT("/exams/:id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:id", handlers.Exam.Delete)
		adminAPI.GET("/exams/:id/violations", handlers.Exam.ListViolations)

		// Results review
		adminAPI.GET("/students/:id/results", handlers.Submission.ListStudentResults)
		adminAPI.GET("/results/:id", handlers.Submission.GetResultDetail)

		// Training videos
		adminAPI.POST("/training/folders", handlers.Training.CreateFolder)
		adminAPI.DELETE("/training/folders/:id", handlers.Training.DeleteFolder)
		adminAPI.POST("/training/folders/:id/videos", handlers.Training.Upload)
		adminAPI.DELETE("/training/videos/:id", handlers.Training.DeleteVideo)

		// Schedule documents
		adminAPI.POST("/schedule/folders", handlers.Schedule.CreateFolder)
		adminAPI.DELETE("/schedule/folders/:id", handlers.Schedule.DeleteFolder)
		adminAPI.POST("/schedule/folders/:id/documents", handlers.Schedule.Upload)
		adminAPI.DELETE("/schedule/documents/:id", handlers.Schedule.DeleteDocument)
	}

	return router
}
