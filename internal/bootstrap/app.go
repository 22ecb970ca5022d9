package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/admin"
	authgoogle "plagiarism-backend/internal/auth"
	"plagiarism-backend/internal/documents"
	"plagiarism-backend/internal/llm"
	"plagiarism-backend/internal/llm/openrouter"
	"plagiarism-backend/internal/shared/config"
	"plagiarism-backend/internal/shared/server"
	"plagiarism-backend/internal/shared/storage/db"
	"plagiarism-backend/internal/shared/storage/object"
	objectlocal "plagiarism-backend/internal/shared/storage/object/local"
	objects3 "plagiarism-backend/internal/shared/storage/object/s3"
	"plagiarism-backend/internal/shared/telemetry"
	"plagiarism-backend/internal/suggestions"
	"plagiarism-backend/internal/users"
)

// App is the wired application.
type App struct {
	Router *gin.Engine
	DB     *sql.DB
}

// Close releases shared resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// Build wires repositories, services, and handlers from configuration.
// Without DATABASE_URL everything runs on in-memory repositories, which is
// enough for local development against the UI.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{}

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.RunMigrations(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		app.DB = database
	} else {
		telemetry.Warn("DATABASE_URL not set; using in-memory repositories", nil)
	}

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	var (
		docsRepo documents.DocumentsRepo
		sugsRepo suggestions.SuggestionsRepo
		uRepo    users.Repo
		logsRepo admin.LogsRepo
		settings admin.SettingsRepo
		stats    admin.AnalyticsRepo
	)
	if database != nil {
		docsRepo = &documents.PGRepo{DB: database}
		sugsRepo = &suggestions.PGRepo{DB: database}
		uRepo = &users.PGRepo{DB: database}
		logsRepo = &admin.PGLogsRepo{DB: database}
		settings = &admin.PGSettingsRepo{DB: database}
		stats = &admin.PGAnalyticsRepo{DB: database}
	} else {
		docsRepo = documents.NewMemoryRepo()
		sugsRepo = suggestions.NewMemoryRepo()
		uRepo = users.NewMemoryRepo()
		logsRepo = admin.NewMemoryLogsRepo()
		settings = admin.NewMemorySettingsRepo()
		stats = admin.MemoryAnalyticsRepo{}
	}

	chat, err := buildChatClient(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	mailer := buildMailer(cfg)

	usersSvc := users.NewService(uRepo, mailer, time.Duration(cfg.OTPExpiryMinutes)*time.Minute)
	docsSvc := &documents.Service{Store: store, Repo: docsRepo, Purger: sugsRepo}
	generator := suggestions.NewGenerator(chat, sugsRepo, docsSvc)

	var google *authgoogle.GoogleService
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google = authgoogle.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			usersSvc,
		)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Env:              cfg.Env,
		CORSAllowOrigins: cfg.CORSAllowOrigin,
		Users:            users.NewHandler(usersSvc),
		Google:           google,
		Documents:        documents.NewHandler(docsSvc),
		Suggestions:      suggestions.NewHandler(generator, sugsRepo, docsSvc),
		Admin:            admin.NewHandler(logsRepo, settings, stats, usersSvc),
		ActivityLogs:     logsRepo,
	})

	return app, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "s3" {
		store, err := objects3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		return store, nil
	}
	return objectlocal.New(cfg.LocalStoreDir), nil
}

func buildChatClient(cfg config.Config) (llm.ChatClient, error) {
	if cfg.OpenRouterAPIKey == "" {
		telemetry.Warn("OPENROUTER_API_KEY not set; suggestion generation uses placeholder output", nil)
		return llm.PlaceholderClient{}, nil
	}
	client, err := openrouter.NewClient(
		cfg.OpenRouterAPIKey,
		cfg.LLMModel,
		cfg.SiteURL,
		cfg.SiteName,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	return client, nil
}

func buildMailer(cfg config.Config) users.Mailer {
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		telemetry.Warn("SMTP not configured; OTP mail is written to the log", nil)
		return users.LogMailer{}
	}
	return &users.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
}
