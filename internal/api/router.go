package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CommanderOutpost/remindria/internal/database"
	ievents "github.com/CommanderOutpost/remindria/internal/events"
	mw "github.com/CommanderOutpost/remindria/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Conversation handlers
	Chat       http.HandlerFunc
	ListChats  http.HandlerFunc
	GetChat    http.HandlerFunc
	DeleteChat http.HandlerFunc

	// Schedule handlers
	CreateSchedule   http.HandlerFunc
	ListSchedules    http.HandlerFunc
	GetSchedule      http.HandlerFunc
	UpdateSchedule   http.HandlerFunc
	DeleteSchedule   http.HandlerFunc
	SchedulesInRange http.HandlerFunc

	// Assistant persona handlers
	CreateAssistant http.HandlerFunc
	ListAssistants  http.HandlerFunc
	GetAssistant    http.HandlerFunc
	UpdateAssistant http.HandlerFunc
	DeleteAssistant http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
	ChatRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, eventsClient *ievents.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe, always 200 with no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if eventsClient != nil && !eventsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if eventsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes are public and optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			// Chat turns call the completion service,
			// so they get their own rate limit
			r.Group(func(r chi.Router) {
				if cfg.ChatRateLimiter != nil {
					r.Use(cfg.ChatRateLimiter)
				}
				r.Post("/chat", h.Chat)
			})

			r.Route("/chats", func(r chi.Router) {
				r.Get("/", h.ListChats)
				r.Get("/{id}", h.GetChat)
				r.Delete("/{id}", h.DeleteChat)
			})

			// Schedule routes
			r.Route("/schedules", func(r chi.Router) {
				r.Post("/", h.CreateSchedule)
				r.Get("/", h.ListSchedules)
				r.Get("/range", h.SchedulesInRange)
				r.Get("/{id}", h.GetSchedule)
				r.Put("/{id}", h.UpdateSchedule)
				r.Delete("/{id}", h.DeleteSchedule)
			})

			// Assistant persona routes
			r.Route("/assistants", func(r chi.Router) {
				r.Post("/", h.CreateAssistant)
				r.Get("/", h.ListAssistants)
				r.Get("/{id}", h.GetAssistant)
				r.Put("/{id}", h.UpdateAssistant)
				r.Delete("/{id}", h.DeleteAssistant)
			})
		})
	})

	return r
}
