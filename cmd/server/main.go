package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_chat/internal/config"
	"marketplace_chat/internal/handler"
	"marketplace_chat/internal/hub"
	"marketplace_chat/internal/middleware"
	"marketplace_chat/internal/repository"
	"marketplace_chat/internal/service"
	"marketplace_chat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log.Level)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			appLogger.Fatal("Failed to connect to Redis", "error", err)
		}
		appLogger.Info("Redis connection established")
	}

	var repos *repository.Repositories
	switch cfg.Database.Driver {
	case "memory":
		var members *repository.MemoryMemberDirectory
		repos, members = repository.NewMemoryRepositories(rdb, appLogger)
		if cfg.Database.SeedFile != "" {
			if err := seedMembers(members, cfg.Database.SeedFile); err != nil {
				appLogger.Fatal("Failed to seed member directory", "error", err)
			}
			appLogger.Info("Member directory seeded", "file", cfg.Database.SeedFile)
		}

	default:
		dbPool, err := connectPostgres(cfg.Database)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", "error", err)
		}
		defer dbPool.Close()
		appLogger.Info("Database connection established")

		if cfg.Database.AutoMigrate {
			if err := repository.Migrate(context.Background(), dbPool); err != nil {
				appLogger.Fatal("Failed to apply schema", "error", err)
			}
			appLogger.Info("Database schema applied")
		}
		repos = repository.NewRepositories(dbPool, rdb, appLogger)
	}

	chatHub := hub.New(appLogger)
	dispatcher := hub.NewDispatcher(cfg.Chat.DispatchShards, cfg.Chat.DispatchQueue, appLogger)

	services := service.NewServices(repos, chatHub, dispatcher, cfg, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, cfg.RateLimit.Limit, cfg.RateLimit.Window, appLogger)

	handlers := handler.NewHandlers(services, repos, cfg, appLogger)
	router := handler.NewRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		appLogger.Error("Dispatcher did not drain", "error", err)
	}
	closed := chatHub.CloseAll("server shutdown")

	appLogger.Info("Server exited", "closed_connections", closed)
}

func connectPostgres(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MaxConnIdleTime = cfg.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func seedMembers(members *repository.MemoryMemberDirectory, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return members.LoadSeed(f)
}
