package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/hongminglow/storefront/internal/app"
	"github.com/hongminglow/storefront/internal/catalog"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/session"
	postgres "github.com/hongminglow/storefront/internal/storage/postgres"
	"github.com/hongminglow/storefront/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadShop()
	log := logging.New(os.Stderr, "text", cfg.LogLevel)
	if err != nil {
		log.Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && ctx.Err() == nil {
		log.Error(ctx, "storefront exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	store, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

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

	router := app.NewRouter(session.NewEstablisher(store, log), session.NewRegistrar(store, log), cfg.SplashDuration)

	var readPassword tui.PasswordReader
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		readPassword = func() (string, error) {
			pw, err := term.ReadPassword(fd)
			return string(pw), err
		}
	}

	return tui.New(router, products, os.Stdin, os.Stdout, readPassword, log).Run(ctx)
}
