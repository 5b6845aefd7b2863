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

	"github.com/eternumwasd/api/internal/catalog"
	"github.com/eternumwasd/api/internal/config"
	"github.com/eternumwasd/api/internal/database"
	"github.com/eternumwasd/api/internal/handler"
	"github.com/eternumwasd/api/internal/hexmap"
	"github.com/eternumwasd/api/internal/jobs"
	"github.com/eternumwasd/api/internal/middleware"
	"github.com/eternumwasd/api/internal/repository"
	"github.com/eternumwasd/api/internal/service"
	"github.com/eternumwasd/api/internal/telemetry"
	"github.com/eternumwasd/api/internal/upstream"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("tracing disabled", slog.String("error", err.Error()))
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Map assets are optional at startup; map routes report them missing
	assets := hexmap.NewStore(cfg.Map.AssetDir)
	if err := assets.Load(); err != nil {
		slog.Warn("map assets not loaded", slog.String("dir", cfg.Map.AssetDir), slog.String("error", err.Error()))
	}
	if cfg.Map.Watch {
		if err := assets.Watch(ctx); err != nil {
			slog.Warn("map asset watch failed", slog.String("error", err.Error()))
		}
		defer assets.Stop()
	}

	cat := catalog.Default()

	// Repositories
	memberRepo := repository.NewMemberRepository(db)
	realmRepo := repository.NewRealmRepository(db)

	// Upstream clients
	httpClient := upstream.NewClient(cfg.Upstream.RequestTimeout, cfg.Upstream.UserAgent)
	gameSQL := upstream.NewSQLClient(httpClient, cfg.Upstream.GameDataSQL)
	sources := upstream.NewSyncSources(httpClient, cfg.Upstream, cfg.Sync.TokenLimit)
	cartridge := upstream.NewCartridgeClient(httpClient, cfg.Upstream.CartridgeAPIURL)

	// Services
	eventHub := service.NewEventHub()
	defer eventHub.Close()

	memberService := service.NewMemberService(memberRepo, realmRepo)
	realmService := service.NewRealmService(realmRepo, cat)
	gameDataService := service.NewGameDataService(service.GameDataServiceConfig{
		SQL:       gameSQL,
		Realms:    realmRepo,
		Usernames: cartridge,
		Catalog:   cat,
	})
	identityService := service.NewIdentityService(cartridge)
	liveMapService := service.NewLiveMapService(service.LiveMapServiceConfig{
		Assets:    assets,
		Members:   memberRepo,
		Realms:    realmRepo,
		World:     gameDataService,
		Usernames: cartridge,
		Catalog:   cat,
	})
	syncService := service.NewSyncService(service.SyncServiceConfig{
		Passes:         sources.Passes,
		Tokens:         sources.Tokens,
		RPC:            sources.RPC,
		Realms:         realmRepo,
		Publisher:      eventHub,
		RPCConcurrency: cfg.Sync.RPCConcurrency,
		RPCStagger:     cfg.Sync.RPCStagger,
		RPCTimeout:     cfg.Sync.RPCTimeout,
	})

	// Background jobs
	if cfg.Sync.RealmsEnabled {
		realmJob := jobs.NewRealmSyncJob(syncService, cfg.Sync.RealmsInterval, jobs.WithInitialDelay(10*time.Second))
		realmJob.Start()
		defer realmJob.Stop()
	}
	if cfg.Sync.OwnersEnabled {
		ownerJob := jobs.NewOwnerSyncJob(syncService, cfg.Sync.OwnersInterval)
		ownerJob.Start()
		defer ownerJob.Stop()
	}

	// Handlers
	mux := http.NewServeMux()
	handlers := &handler.Handlers{
		Health:   handler.NewHealthHandler(db, assets),
		Members:  handler.NewMemberHandler(memberService),
		Realms:   handler.NewRealmHandler(realmService),
		GameData: handler.NewGameDataHandler(gameDataService),
		Identity: handler.NewIdentityHandler(identityService),
		Sync:     handler.NewSyncHandler(syncService, eventHub),
		LiveMap:  handler.NewLiveMapHandler(liveMapService),
	}
	handlers.Register(mux)

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	defer idempotencyStore.Stop()

	chain := []middleware.Middleware{
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logger,
		middleware.CORS(cfg.Server.AllowedOrigins),
	}
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			PerSec: cfg.RateLimit.PerSec,
			Burst:  cfg.RateLimit.Burst,
		})
		defer rateLimiter.Stop()
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}
	chain = append(chain, middleware.Idempotency(idempotencyStore), middleware.Compress)

	// Create HTTP server. WriteTimeout does not apply to the event stream,
	// which clears its own deadline.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.Chain(mux, chain...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		slog.Error("server error", slog.String("error", err.Error()))
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Open event streams would otherwise hold Shutdown until the deadline
	eventHub.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
