package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/agency-crm-backend/internal/ai"
	"github.com/ignatzorin/agency-crm-backend/internal/config"
	"github.com/ignatzorin/agency-crm-backend/internal/db"
	httpHandlers "github.com/ignatzorin/agency-crm-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/agency-crm-backend/internal/http/router"
	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/mail"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
	"github.com/ignatzorin/agency-crm-backend/internal/storage"
	"github.com/ignatzorin/agency-crm-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	documentStorage, err := storage.NewDocumentStorage(cfg.DocumentStorage, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIModel)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	// Репозитории.
	organizationRepo := repository.NewOrganizationRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	companyRepo := repository.NewCompanyRepository(dbConn)
	contactRepo := repository.NewContactRepository(dbConn)
	opportunityRepo := repository.NewOpportunityRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	documentRepo := repository.NewDocumentRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	notificationService := service.NewNotificationService(notificationRepo)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(userRepo, notificationService))
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, organizationRepo, tokenManager)
	directoryService := service.NewDirectoryService(companyRepo, contactRepo)
	opportunityService := service.NewOpportunityService(opportunityRepo, companyRepo)
	resolver := service.NewAssigneeResolver(contactRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, opportunityRepo, opportunityRepo, resolver, aiClient)
	questionnaireService := service.NewQuestionnaireService(taskRepo, opportunityRepo, contactRepo, mailer, hub, cfg.FrontendBaseURL)
	proposalService := service.NewProposalService(proposalRepo, opportunityRepo, opportunityRepo, taskRepo, companyRepo, contactRepo, aiClient, hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	opportunityHandler := httpHandlers.NewOpportunityHandler(opportunityService)
	taskHandler := httpHandlers.NewTaskHandler(taskService)
	questionnaireHandler := httpHandlers.NewQuestionnaireHandler(questionnaireService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService)
	directoryHandler := httpHandlers.NewDirectoryHandler(directoryService)
	documentHandler := httpHandlers.NewDocumentHandler(documentRepo, documentStorage, opportunityService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, opportunityHandler, taskHandler, questionnaireHandler, proposalHandler, directoryHandler, documentHandler, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
