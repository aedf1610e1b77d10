package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/storefront/internal/catalog"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/server"
	postgres "github.com/hongminglow/storefront/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	log := logging.New(os.Stdout, "json", cfg.LogLevel)
	ctx := context.Background()
	if envErr != nil {
		log.Info(ctx, "no .env file found; relying on existing environment")
	}
	if err != nil {
		log.Error(ctx, "load config", "error", err)
		os.Exit(1)
	}

	userStore, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error(ctx, "init database", "error", err)
		os.Exit(1)
	}
	defer userStore.Close()

	var cache *catalog.Cache
	if cfg.RedisURL != "" {
		rdb, err := catalog.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn(ctx, "catalog cache disabled", "error", err)
		} else {
			defer rdb.Close()
			cache = catalog.NewCache(rdb, cfg.CatalogTTL)
		}
	}
	products := catalog.NewService(catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout), cache, log)

	srv := server.New(cfg, server.Deps{
		Store:    userStore,
		Health:   userStore,
		Products: products,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "storefront backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error(ctx, "http server error", "error", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error(ctx, "graceful shutdown error", "error", err)
	}
}
