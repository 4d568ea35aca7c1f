package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Eih3/walking/internal/adapters/cache"
	"github.com/Eih3/walking/internal/adapters/providers/imagehost"
	"github.com/Eih3/walking/internal/adapters/render"
	"github.com/Eih3/walking/internal/api/handlers"
	"github.com/Eih3/walking/internal/api/routes"
	"github.com/Eih3/walking/internal/application/services"
	"github.com/Eih3/walking/internal/domain/providers"
	"github.com/Eih3/walking/internal/infrastructure/clients/landmarkapi"
	"github.com/Eih3/walking/internal/infrastructure/clients/redis"
	"github.com/Eih3/walking/internal/infrastructure/observability"
	"github.com/Eih3/walking/pkg/config"
	"github.com/Eih3/walking/pkg/secrets"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Secrets from Vault land in the environment before config is read
	if _, err := secrets.NewLoader(secrets.VaultConfigFromEnv(), nil).Apply(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to load secrets from Vault")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger("walking-api", "production", os.Stderr)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, os.Stdout)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Orphaned image ledger is optional
	var orphanStore providers.OrphanedImageStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis client; orphaned images will only be logged")
		} else {
			defer redisClient.Close()
			orphanStore = cache.NewRedisOrphanStore(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized successfully")
		}
	}

	// Outbound clients
	landmarkClient := landmarkapi.NewClientWithOptions(
		cfg.LandmarkAPI.BaseURL,
		&http.Client{Timeout: cfg.LandmarkAPI.Timeout},
		metrics,
	)

	imageHost, err := imagehost.NewImgurProviderWithOptions(
		cfg.ImageHost.ClientID,
		cfg.ImageHost.UploadURL,
		&http.Client{Timeout: cfg.ImageHost.Timeout},
		metrics,
	)
	if err != nil {
		log.Warn().Err(err).Msg("Image host not configured; image uploads will fail")
		imageHost = nil
	}

	// Initialize services and handlers
	interactionService := services.NewInteractionService(
		landmarkClient,
		imageHost,
		render.NewPageRenderer(),
		orphanStore,
		metrics,
	)
	interactionHandler := handlers.NewInteractionHandler(interactionService, cfg.Server.MaxUploadBytes)

	router := routes.NewRouter(interactionHandler, cfg.Server.AllowedOrigins, cfg.Server.AdminJWTSecret, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := cfg.Server.ServerAddr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LandmarkAPI.Timeout + cfg.ImageHost.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", serverAddr).
			Str("landmark_api", cfg.LandmarkAPI.BaseURL).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
