package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hotelwatch/rate-scraper/internal/api"
	"github.com/hotelwatch/rate-scraper/internal/browser"
	"github.com/hotelwatch/rate-scraper/internal/config"
	"github.com/hotelwatch/rate-scraper/internal/database"
	"github.com/hotelwatch/rate-scraper/internal/events"
	"github.com/hotelwatch/rate-scraper/internal/jobs"
	"github.com/hotelwatch/rate-scraper/internal/normalize"
	"github.com/hotelwatch/rate-scraper/internal/otas"
	"github.com/hotelwatch/rate-scraper/internal/ratelimit"
	"github.com/hotelwatch/rate-scraper/internal/scraper"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// The whitelist is process-wide and loaded exactly once; a missing or
	// malformed file is fatal here, never a per-call error.
	whitelist, err := otas.Load(cfg.Whitelist.Path)
	if err != nil {
		logger.Error("failed to load OTA whitelist", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// The browser launches lazily on the first session request, so a
	// deployment whose adapters never open a session runs without the
	// driver installed.
	launcher := browser.NewLauncher(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ProxyServer:    cfg.Browser.ProxyServer,
	})
	defer launcher.Close()

	normalizer := normalize.New(whitelist)

	env := scraper.Environment{
		Sessions:   launcher.NewSession,
		Normalizer: normalizer,
		LimiterFor: func(string) ratelimit.Limiter {
			return ratelimit.NewBackoffLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
		},
		WaitBudget: cfg.Scraper.WaitBudget,
		Deadline:   cfg.Scraper.Deadline,
	}

	registry, err := scraper.DefaultRegistry(env, whitelist.Contains)
	if err != nil {
		logger.Error("failed to build scraper registry", "error", err)
		os.Exit(1)
	}
	logger.Info("scrapers registered", "otas", registry.OTAs())

	rateRepo := database.NewRateRepository(db)
	jobRepo := database.NewJobRepository(db)
	publisher := events.NewPublisher(redisClient, cfg.Redis.Stream, logger)

	manager := jobs.NewManager(jobRepo, rateRepo, registry, publisher, logger)
	go manager.StartWorker(ctx)

	handlers := api.NewHandlers(manager, rateRepo, whitelist, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	handlers.Routes(r)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	cancel()
}
