package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vetaris/storefront-golang/internal/auth"
	"github.com/vetaris/storefront-golang/internal/backend"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/config"
	"github.com/vetaris/storefront-golang/internal/handlers"
	"github.com/vetaris/storefront-golang/internal/logger"
	"github.com/vetaris/storefront-golang/internal/routes"
	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

const (
	sweepInterval   = 10 * time.Minute
	checkoutMaxIdle = time.Hour
)

func main() {
	// 0. --- Configuration (.env, then the environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Visitor storage ---
	kv, closeKV, err := openStorage(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeKV()

	// 2. --- Shop backend ---
	client, err := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: 15 * time.Second}, zlog)
	if err != nil {
		zlog.Fatal("Invalid backend URL", zap.Error(err))
	}

	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		zlog.Fatal("Invalid session secret", zap.Error(err))
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		KV:                    kv,
		Backend:               client,
		Wizards:               checkout.NewRegistry(),
		Log:                   zlog,
		CurrencySuffix:        cfg.CurrencySuffix,
		CheckoutRedirectDelay: cfg.CheckoutRedirectDelay,
		UploadDir:             cfg.UploadDir,
		PublicBaseURL:         cfg.PublicBaseURL,
	}

	// --- 3. Background Worker ---
	// Clears expired visitor data and abandoned checkouts.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		zlog.Info("Background worker started", zap.Duration("interval", sweepInterval))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.ProcessExpiredSessions(ctx, checkoutMaxIdle)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		Tokens:        tokens,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
		CORSOrigins:   strings.Split(cfg.CORSOrigin, ","),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		zlog.Info("Starting storefront server", zap.String("addr", srv.Addr), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// openStorage connects the configured backend for visitor state.
func openStorage(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (storage.KV, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return storage.NewRedisStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }, nil

	case config.StorageMySQL:
		db, err := storage.OpenDB(ctx, cfg.MySQLDSN, zlog)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.RunMigrations(db, zlog); err != nil {
			closeDB(db)
			return nil, nil, err
		}
		return storage.NewMySQLStore(db, cfg.SessionTTL), func() { closeDB(db) }, nil

	default:
		return storage.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}
