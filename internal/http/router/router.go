package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/agency-crm-backend/internal/config"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers"
	"github.com/ignatzorin/agency-crm-backend/internal/http/middleware"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	opportunityHandler *handlers.OpportunityHandler,
	taskHandler *handlers.TaskHandler,
	questionnaireHandler *handlers.QuestionnaireHandler,
	proposalHandler *handlers.ProposalHandler,
	directoryHandler *handlers.DirectoryHandler,
	documentHandler *handlers.DocumentHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Справочник
		protected.POST("/companies", directoryHandler.CreateCompany)
		protected.GET("/companies", directoryHandler.ListCompanies)
		protected.GET("/companies/:id", middleware.UUIDValidator("id"), directoryHandler.GetCompany)
		protected.GET("/companies/:id/contacts", middleware.UUIDValidator("id"), directoryHandler.ListContacts)
		protected.POST("/contacts", directoryHandler.CreateContact)
		protected.GET("/contacts/:id", middleware.UUIDValidator("id"), directoryHandler.GetContact)

		// Воронка продаж
		protected.POST("/opportunities", opportunityHandler.Create)
		protected.GET("/opportunities", opportunityHandler.List)
		protected.GET("/opportunities/:id", middleware.UUIDValidator("id"), opportunityHandler.Get)
		protected.PATCH("/opportunities/:id/status", middleware.UUIDValidator("id"), opportunityHandler.UpdateStatus)
		protected.PATCH("/opportunities/:id/outcome", middleware.UUIDValidator("id"), opportunityHandler.UpdateOutcome)
		protected.DELETE("/opportunities/:id", middleware.UUIDValidator("id"), middleware.RequireRole("admin", "superadmin"), opportunityHandler.Delete)

		// Вопросы брифа
		protected.POST("/opportunities/:id/tasks", middleware.UUIDValidator("id"), taskHandler.BulkCreate)
		protected.POST("/opportunities/:id/tasks/generate", middleware.UUIDValidator("id"), taskHandler.Generate)
		protected.GET("/opportunities/:id/tasks", middleware.UUIDValidator("id"), taskHandler.List)
		protected.PATCH("/opportunities/:id/tasks/:taskId", middleware.UUIDValidator("id"), middleware.UUIDValidator("taskId"), taskHandler.Update)
		protected.DELETE("/opportunities/:id/tasks/:taskId", middleware.UUIDValidator("id"), middleware.UUIDValidator("taskId"), taskHandler.Delete)

		// Анкеты
		protected.GET("/opportunities/:id/questionnaire", middleware.UUIDValidator("id"), questionnaireHandler.Preview)
		protected.POST("/opportunities/:id/questionnaire/send", middleware.UUIDValidator("id"), questionnaireHandler.Send)

		// Коммерческие предложения
		protected.POST("/opportunities/:id/proposals/generate", middleware.UUIDValidator("id"), proposalHandler.Generate)
		protected.GET("/opportunities/:id/proposals", middleware.UUIDValidator("id"), proposalHandler.List)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		protected.PATCH("/proposals/:id/status", middleware.UUIDValidator("id"), proposalHandler.UpdateStatus)

		// Документы
		protected.POST("/opportunities/:id/documents", middleware.UUIDValidator("id"), documentHandler.Upload)
		protected.GET("/opportunities/:id/documents", middleware.UUIDValidator("id"), documentHandler.List)
		protected.GET("/documents/:id/download", middleware.UUIDValidator("id"), documentHandler.Download)
		protected.DELETE("/documents/:id", middleware.UUIDValidator("id"), documentHandler.Delete)

		// Уведомления
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	return r
}
