package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/assistant"
	"github.com/CommanderOutpost/remindria/internal/assistants"
	"github.com/CommanderOutpost/remindria/internal/auth"
	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
	"github.com/CommanderOutpost/remindria/internal/config"
	"github.com/CommanderOutpost/remindria/internal/database"
	"github.com/CommanderOutpost/remindria/internal/events"
	"github.com/CommanderOutpost/remindria/internal/middleware"
	"github.com/CommanderOutpost/remindria/internal/notifier"
	iredis "github.com/CommanderOutpost/remindria/internal/redis"
	"github.com/CommanderOutpost/remindria/internal/schedules"
	"github.com/CommanderOutpost/remindria/internal/server"
	"github.com/CommanderOutpost/remindria/internal/users"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), migrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var eventsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		eventsClient, err = events.NewClient(ctx, cfg.NATS.URL)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = events.NewPublisher(eventsClient.JetStream())
	}

	// Completion service
	completionClient := completion.NewOpenAIClient(completion.OpenAIConfig{
		BaseURL: cfg.Completion.BaseURL,
		APIKey:  cfg.Completion.APIKey,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.Timeout,
	})

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	userSvc := users.NewService(users.NewRepository(pool))
	authSvc := auth.NewService(userSvc, jwtManager, redisClient)
	authHandler := auth.NewHandler(authSvc)

	// Schedules
	scheduleRepo := schedules.NewRepository(pool)
	scheduleSvc := schedules.NewService(scheduleRepo, publisher)
	scheduleHandler := schedules.NewHandler(scheduleSvc)

	// Assistant personas
	assistantRepo := assistants.NewRepository(pool)
	assistantHandler := assistants.NewHandler(assistants.NewService(assistantRepo))

	// Conversations
	chatRepo := chats.NewRepository(pool)
	chatHandler := chats.NewHandler(chatRepo)
	turnSvc := assistant.NewService(chatRepo, scheduleRepo, assistantRepo, completionClient, publisher)
	turnHandler := assistant.NewHandler(turnSvc)

	// Due-reminder notifier
	if cfg.Notifier.Enabled {
		n := notifier.New(scheduleRepo, publisher, assistant.NewRenderer(completionClient), cfg.Notifier.Interval)
		go n.Start(ctx)
	}

	// Rate limiters
	authLimiter := middleware.NewRateLimiter(redisClient, "auth", cfg.RateLimit.AuthMaxReqs, cfg.RateLimit.WindowSec)
	chatLimiter := middleware.NewRateLimiter(redisClient, "chat", cfg.RateLimit.ChatMaxReqs, cfg.RateLimit.WindowSec)

	// Router
	router := api.NewRouter(pool, eventsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
		ChatRateLimiter:    chatLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Chat:       turnHandler.Chat,
		ListChats:  chatHandler.List,
		GetChat:    chatHandler.Get,
		DeleteChat: chatHandler.Delete,

		CreateSchedule:   scheduleHandler.Create,
		ListSchedules:    scheduleHandler.List,
		GetSchedule:      scheduleHandler.Get,
		UpdateSchedule:   scheduleHandler.Update,
		DeleteSchedule:   scheduleHandler.Delete,
		SchedulesInRange: scheduleHandler.ListRange,

		CreateAssistant: assistantHandler.Create,
		ListAssistants:  assistantHandler.List,
		GetAssistant:    assistantHandler.Get,
		UpdateAssistant: assistantHandler.Update,
		DeleteAssistant: assistantHandler.Delete,

		AuthMiddleware: auth.Middleware(jwtManager),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
