// Agentverse - AI agent dashboard server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/api"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/config"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/executor"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/generator"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/identity"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/integration"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/middleware"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/notify"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/sandbox"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/store"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/unified"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/ws"
	"github.com/chetanchannaveer-rgb/Agentverse/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected", "path", cfg.DBPath)

	m := metrics.New()

	adapter := provider.New(cfg.Provider, m)

	// Integrations share one HTTP client; demo mode kicks in per
	// integration when its key is empty.
	httpClient := &http.Client{Timeout: cfg.Integration.HTTPTimeout}
	mailer := integration.NewMailer(cfg.Integration.ResendAPIKey, cfg.Integration.FromEmail, httpClient)
	weather := integration.NewWeatherClient(cfg.Integration.OpenWeatherAPIKey, httpClient)
	news := integration.NewNewsClient(cfg.Integration.NewsAPIKey, httpClient)

	registry := executor.NewRegistry(
		executor.NewEmailAction(mailer),
		executor.NewWeatherAction(weather),
		executor.NewNewsAction(news, adapter),
		executor.NewReminderAction(mailer),
		executor.NewStubAction(domain.TemplateSocialMediaManager, "Social Media Manager"),
		executor.NewStubAction(domain.TemplateDataAnalyst, "Data Analyst"),
	)
	exec := executor.New(repo, registry, m)

	projectCache := generator.NewCache(cfg.ProjectTTL)
	gen := generator.New(adapter, projectCache, m)

	var runner sandbox.Runner
	switch cfg.Sandbox.Backend {
	case "docker":
		dockerRunner, err := sandbox.NewDockerRunner(cfg.Sandbox.DockerImage)
		if err != nil {
			slog.Error("failed to initialize docker sandbox", "error", err)
			os.Exit(1)
		}
		runner = dockerRunner
		slog.Info("code sandbox ready", "backend", "docker", "image", cfg.Sandbox.DockerImage)
	default:
		runner = sandbox.NewLocalRunner()
		slog.Info("code sandbox ready", "backend", "local")
	}

	unifiedRouter := unified.New(adapter, gen)
	sessions := ws.NewSessionManager()

	baseHandler := api.NewHandler(repo)
	agentHandler := api.NewAgentHandler(baseHandler, exec)
	chatHandler := api.NewChatHandler(baseHandler, unifiedRouter)
	learningHandler := api.NewLearningHandler(baseHandler, adapter)
	codeHandler := api.NewCodeHandler(baseHandler, runner, m)
	projectHandler := api.NewProjectHandler(baseHandler, gen, projectCache)
	healthHandler := api.NewHealthHandler(repo, cfg, adapter)
	wsHandler := ws.NewHandler(unifiedRouter, exec, sessions, m, cfg.FrontendURL, cfg.IsDevelopment())

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(m.Middleware)

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	r.Route("/api", func(apiRouter chi.Router) {
		// Health and config stay outside the identity group so probes
		// do not mint anonymous users.
		healthHandler.RegisterRoutes(apiRouter)

		apiRouter.Group(func(authed chi.Router) {
			authed.Use(identity.Middleware(repo, cfg.IsDevelopment()))
			agentHandler.RegisterRoutes(authed)
			chatHandler.RegisterRoutes(authed)
			learningHandler.RegisterRoutes(authed)
			codeHandler.RegisterRoutes(authed)
			projectHandler.RegisterRoutes(authed)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.With(identity.Middleware(repo, cfg.IsDevelopment())).Get("/ws", wsHandler.ServeHTTP)
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websockets and provider calls are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator.StartEviction(ctx, projectCache, cfg.ProjectSweep)

	if cfg.Reminder.Enabled {
		notify.StartReminderWorker(ctx, repo, mailer, cfg.Reminder.Interval)
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down gracefully")
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
