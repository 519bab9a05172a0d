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

	"github.com/battled-crew/battled-system/battles"
	"github.com/battled-crew/battled-system/config"
	"github.com/battled-crew/battled-system/db"
	"github.com/battled-crew/battled-system/handlers"
	"github.com/battled-crew/battled-system/repositories"
	"github.com/battled-crew/battled-system/routes"
	"github.com/battled-crew/battled-system/services"
	"github.com/battled-crew/battled-system/storage"
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

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Warn("object storage not configured, poster uploads disabled")
	}

	wsHub := battles.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	dancerRepo := repositories.NewPostgresDancerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	performerRepo := repositories.NewPostgresPerformerRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	battleRepo := repositories.NewPostgresBattleRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	dancerService := services.NewDancerService(dancerRepo)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, categoryRepo, performerRepo, battleRepo, uploader, logger)
	categoryService := services.NewCategoryService(dbConn, tournamentRepo, categoryRepo, logger)
	registrationService := services.NewRegistrationService(dbConn, tournamentRepo, categoryRepo, performerRepo, dancerRepo, logger)
	phaseService := services.NewPhaseService(dbConn, tournamentRepo, categoryRepo, performerRepo, poolRepo, battleRepo, wsHub, logger)
	battleService := services.NewBattleService(dbConn, battleRepo, performerRepo, categoryRepo, wsHub, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	dancerHandler := handlers.NewDancerHandler(dancerService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, phaseService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	performerHandler := handlers.NewPerformerHandler(registrationService)
	battleHandler := handlers.NewBattleHandler(battleService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		dancerHandler,
		tournamentHandler,
		categoryHandler,
		performerHandler,
		battleHandler,
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
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("forced close failed", slog.Any("error", closeErr))
			}
		}
	}

	logger.Info("server stopped")
}
