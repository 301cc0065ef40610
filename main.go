package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/config"
	"github.com/LDK/javascriv-api/internal/http"
	"github.com/LDK/javascriv-api/internal/projects"
	"github.com/LDK/javascriv-api/internal/realtime"
	"github.com/LDK/javascriv-api/internal/repository/postgres"
	"github.com/LDK/javascriv-api/internal/storage/s3"
	"github.com/LDK/javascriv-api/pkg/mailer"
	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
	"github.com/LDK/javascriv-api/pkg/mailer/strategies"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
	logOutputFlags   = log.LstdFlags | log.Lshortfile
	bcryptCost       = 12
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connection established")

	userRepo := postgres.NewUserRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	fileRepo := postgres.NewFileRepository(db)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration, cfg.JWT.Issuer)
	hasher := auth.NewPasswordHasher(bcryptCost)
	authMiddleware := auth.NewMiddleware(jwtService)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := realtime.NewHub()
	go hub.Run(hubCtx)

	deps := projects.Dependencies{
		Tx:              db,
		Users:           userRepo,
		Projects:        projectRepo,
		Files:           fileRepo,
		Publisher:       hub,
		PresenceTimeout: cfg.App.PresenceTimeout,
	}

	if cfg.S3.Enabled() {
		s3Client, err := s3.NewClient(&cfg.S3, cfg.App.PresignedURLExpiry)
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
		deps.Attachments = s3Client
		log.Printf("S3 attachments enabled (bucket %s)", cfg.S3.Bucket)
	} else {
		log.Println("S3 bucket not configured, attachments disabled")
	}

	var notifier *projects.MailNotifier
	if cfg.Mail.Enabled() {
		mail, err := newEmailService(&cfg.Mail)
		if err != nil {
			log.Fatalf("Failed to configure mail: %v", err)
		}
		notifier = projects.NewMailNotifier(mail, cfg.App.Name, cfg.App.URL)
		deps.Notifier = notifier
		log.Printf("Mail notifications enabled (%s)", cfg.Mail.Strategy)
	} else {
		log.Println("No mail provider configured, notifications disabled")
	}

	auditLogger := audit.NewLogger(db.Pool)

	server := http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		Users:          userRepo,
		Projects:       projects.New(deps),
		Hub:            hub,
		JWTService:     jwtService,
		Hasher:         hasher,
		AuthMiddleware: authMiddleware,
		AuditLogger:    auditLogger,
	})

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopHub()
	if notifier != nil {
		notifier.Wait()
	}
	auditLogger.Wait()

	log.Println("Server exited gracefully")
}

// newEmailService builds providers in configured order, skipping any without
// an API key.
func newEmailService(cfg *config.MailConfig) (*mailer.EmailService, error) {
	var list []providers.EmailProvider
	for _, name := range cfg.Providers {
		key := cfg.APIKey(name)
		if key == "" {
			continue
		}
		switch strings.ToLower(name) {
		case registry.ProviderResend:
			list = append(list, providers.NewResendProvider(providers.ResendConfig{APIKey: key}))
		case registry.ProviderSendGrid:
			list = append(list, providers.NewSendGridProvider(providers.SendGridConfig{APIKey: key}))
		default:
			log.Printf("Warning: unknown mail provider %q ignored", name)
		}
	}

	strategy, err := strategies.New(cfg.Strategy, cfg.ProviderLimits)
	if err != nil {
		return nil, err
	}

	return mailer.NewEmailService(mailer.Config{
		Providers:   list,
		Strategy:    strategy,
		DefaultFrom: cfg.From,
	})
}
