package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/http/handlers"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/middleware"
	"github.com/hongminglow/storefront/internal/session"
	"github.com/hongminglow/storefront/internal/storage"
)

// Deps are the collaborators the server needs. They are constructed and
// closed by the caller.
type Deps struct {
	Store    storage.UserStore
	Health   handlers.Pinger
	Products handlers.ProductService
	Log      logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.CatalogTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Handler builds the routed, middleware-wrapped handler.
func Handler(cfg config.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.Health).Register(mux)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	establisher := session.NewEstablisher(deps.Store, deps.Log)
	registrar := session.NewRegistrar(deps.Store, deps.Log)
	handlers.NewAuthHandler(establisher, registrar, deps.Store, tokenManager, deps.Log).Register(mux)
	handlers.NewCatalogHandler(deps.Products, deps.Log).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(deps.Log, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
