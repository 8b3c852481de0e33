package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/config"
	"github.com/inkzone/bracket-engine/db"
	"github.com/inkzone/bracket-engine/handlers"
	"github.com/inkzone/bracket-engine/repositories"
	api "github.com/inkzone/bracket-engine/routes"
	"github.com/inkzone/bracket-engine/services"
	"github.com/inkzone/bracket-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	historyRepo := repositories.NewPostgresHistoryRepository(dbConn)

	stageLocks := services.NewStageLocks()

	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		stageRepo,
		participantRepo,
		userRepo,
		uploader,
		logger,
	)
	participantService := services.NewParticipantService(participantRepo, tournamentRepo)
	stageService := services.NewStageService(
		dbConn,
		stageRepo,
		matchRepo,
		tournamentRepo,
		participantRepo,
		stageLocks,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		stageService,
		stageLocks,
		wsHub,
		logger,
	)
	historyService := services.NewHistoryService(historyRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, participantService)
	stageHandler := handlers.NewStageHandler(stageService)
	matchHandler := handlers.NewMatchHandler(matchService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		stageHandler,
		matchHandler,
		historyHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
