package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/session"
	"github.com/hongminglow/storefront/internal/storage/postgres"
)

// TestAuthIntegration exercises the register/login endpoints against a live database.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	secret := mustGetEnv(t, "JWT_SECRET")
	issuer := mustGetEnv(t, "JWT_ISSUER")
	ttl := mustGetTTL(t)
	tokens := auth.NewTokenManager(secret, issuer, ttl)

	log := logging.Nop()
	mux := http.NewServeMux()
	authHandler := NewAuthHandler(session.NewEstablisher(store, log), session.NewRegistrar(store, log), store, tokens, log)
	authHandler.Register(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	stamp := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", stamp)
	password := fmt.Sprintf("Pass!%d", stamp)

	status, env := postJSON(t, ts.URL+"/register", map[string]string{
		"firstname":     "Api",
		"lastname":      "Test",
		"email":         email,
		"mobile_number": fmt.Sprintf("+1555%07d", stamp%1_000_0000),
		"password":      password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d (%s)", status, env.Message)
	}
	var user models.Profile
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	status, env = postJSON(t, ts.URL+"/login", map[string]string{"email": strings.ToUpper(email), "password": password})
	if status != http.StatusOK {
		t.Fatalf("login status = %d (%s)", status, env.Message)
	}
	var loggedIn struct {
		Token string         `json:"token"`
		User  models.Profile `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &loggedIn); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loggedIn.User.ID != user.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", user.ID, loggedIn.User.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	t.Logf("created user %s (id=%d) and successfully logged in via /login", email, user.ID)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := mustGetEnv(t, "JWT_TTL_MINUTES")
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
