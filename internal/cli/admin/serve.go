package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/safe2go/helpdesk/internal/api/handlers"
	"github.com/safe2go/helpdesk/internal/config"
	"github.com/safe2go/helpdesk/internal/database"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/events"
	"github.com/safe2go/helpdesk/internal/jira"
	"github.com/safe2go/helpdesk/internal/jobs"
	"github.com/safe2go/helpdesk/internal/repository"
	"github.com/safe2go/helpdesk/internal/server"
	"github.com/safe2go/helpdesk/internal/service"
	"github.com/safe2go/helpdesk/internal/storage"
	"github.com/safe2go/helpdesk/internal/taxonomy"
	"github.com/safe2go/helpdesk/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the Safe2Go helpdesk API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	outboxRepo := repository.NewJiraOutboxRepository(pool)

	if cfg.HasInitAdmin() {
		if err := bootstrapInitialAdmin(ctx, cfg, userRepo); err != nil {
			return fmt.Errorf("failed to bootstrap initial admin: %w", err)
		}
	}

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = &S3StorageAdapter{client: s3Client}
	}

	hub := events.NewHub()
	rules := taxonomy.Default()

	jiraClient := jira.NewClient(jira.ClientConfig{
		BaseURL:  cfg.JiraURL,
		Email:    cfg.JiraEmail,
		APIToken: cfg.JiraAPIToken,
	})

	var syncWorker *jobs.Worker
	if cfg.HasJira() {
		syncProcessor := jobs.NewJiraSyncWorker(outboxRepo, jiraClient)
		syncWorker = jobs.NewWorker(syncProcessor, 15*time.Second)
		go syncWorker.Start(ctx)
		log.Println("jira sync worker started")
	}

	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, tokenTTL)
	userSvc := service.NewUserService(userRepo)
	caseSvc := service.NewCaseService(caseRepo, rules, hub)
	recommendationSvc := service.NewRecommendationService(caseRepo, rules)
	commentSvc := service.NewCommentService(commentRepo, caseRepo, userRepo, notificationRepo, outboxRepo, hub)
	notificationSvc := service.NewNotificationService(notificationRepo)
	webhookSvc := service.NewWebhookService(caseRepo, commentRepo, userRepo, notificationRepo, rules, hub)
	dashboardSvc := service.NewDashboardService(caseRepo)
	knowledgeSvc := service.NewKnowledgeService(caseRepo)
	activitySvc := service.NewActivityService(activityRepo)

	var attachmentHandler *handlers.AttachmentHandler
	if storageClient != nil {
		attachmentSvc := service.NewAttachmentService(attachmentRepo, caseRepo, storageClient)
		attachmentHandler = handlers.NewAttachmentHandler(attachmentSvc)
	} else {
		attachmentHandler = handlers.NewAttachmentHandler(&NoOpAttachmentService{})
	}

	routerCfg := server.RouterConfig{
		TokenResolver:       authSvc,
		AuthHandler:         handlers.NewAuthHandler(authSvc),
		UserHandler:         handlers.NewUserHandler(userSvc),
		CaseHandler:         handlers.NewCaseHandler(caseSvc, recommendationSvc),
		CommentHandler:      handlers.NewCommentHandler(commentSvc),
		NotificationHandler: handlers.NewNotificationHandler(notificationSvc),
		KnowledgeHandler:    handlers.NewKnowledgeHandler(knowledgeSvc),
		DashboardHandler:    handlers.NewDashboardHandler(dashboardSvc),
		ActivityHandler:     handlers.NewActivityHandler(activitySvc),
		AttachmentHandler:   attachmentHandler,
		WebhookHandler:      handlers.NewWebhookHandler(webhookSvc),
		EventsHandler:       hub,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if syncWorker != nil {
		syncWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// S3StorageAdapter bridges the storage client to the service-level interface.
type S3StorageAdapter struct {
	client *storage.S3Client
}

func (a *S3StorageAdapter) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	return a.client.GenerateUploadURL(ctx, key, contentType)
}

func (a *S3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *S3StorageAdapter) DeleteObject(ctx context.Context, key string) error {
	return a.client.DeleteObject(ctx, key)
}

func (a *S3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}

// NoOpAttachmentService stands in when object storage is not configured.
type NoOpAttachmentService struct{}

func (s *NoOpAttachmentService) InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error) {
	return nil, fmt.Errorf("attachment service not configured: S3_ENDPOINT required")
}

func (s *NoOpAttachmentService) CompleteUpload(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	return nil, fmt.Errorf("attachment service not configured: S3_ENDPOINT required")
}

func (s *NoOpAttachmentService) DownloadURL(ctx context.Context, attachmentID string) (string, error) {
	return "", fmt.Errorf("attachment service not configured: S3_ENDPOINT required")
}

func (s *NoOpAttachmentService) ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	return nil, fmt.Errorf("attachment service not configured: S3_ENDPOINT required")
}

func (s *NoOpAttachmentService) Delete(ctx context.Context, attachmentID string) error {
	return fmt.Errorf("attachment service not configured: S3_ENDPOINT required")
}

func bootstrapInitialAdmin(ctx context.Context, cfg *config.Config, userRepo *repository.UserRepository) error {
	existing, err := userRepo.GetByEmail(ctx, cfg.InitAdminEmail)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		log.Printf("bootstrap: admin '%s' already exists (id: %s)", existing.Email, existing.ID)
		return nil
	}

	userSvc := service.NewUserService(userRepo)
	user, err := userSvc.Create(ctx, service.CreateUserInput{
		Name:     cfg.InitAdminName,
		Email:    cfg.InitAdminEmail,
		Password: cfg.InitAdminPassword,
		Role:     domain.UserRoleAdmin,
	}, "bootstrap")
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("bootstrap: created administrator '%s' (id: %s)", user.Email, user.ID)
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
