package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	CORSOrigins    []string
	CatalogURL     string
	CatalogTimeout time.Duration
	RedisURL       string
	CatalogTTL     time.Duration
	SplashDuration time.Duration
	LogLevel       string
}

// Load reads the API server configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := load()
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadShop reads the terminal client configuration. The client never issues tokens,
// so JWT_SECRET is not required.
func LoadShop() (Config, error) {
	cfg := load()
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func load() Config {
	return Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:      fallback(os.Getenv("JWT_ISSUER"), "storefront"),
		JWTTTL:         durationFromEnv("JWT_TTL_MINUTES", time.Minute, 60),
		CORSOrigins:    parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		CatalogURL:     strings.TrimRight(fallback(os.Getenv("CATALOG_URL"), "https://fakestoreapi.com"), "/"),
		CatalogTimeout: durationFromEnv("CATALOG_TIMEOUT_SECONDS", time.Second, 10),
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		CatalogTTL:     durationFromEnv("CATALOG_CACHE_TTL_MINUTES", time.Minute, 10),
		SplashDuration: durationFromEnv("SPLASH_SECONDS", time.Second, 5),
		LogLevel:       strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
	}
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// durationFromEnv reads a positive integer count of unit from name, falling back to def units.
func durationFromEnv(name string, unit time.Duration, def int) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name))); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return time.Duration(def) * unit
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
