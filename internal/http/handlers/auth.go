package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/http/respond"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/middleware"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
	"github.com/hongminglow/storefront/internal/session"
	"github.com/hongminglow/storefront/internal/storage"
)

// SignInService authenticates credentials.
type SignInService interface {
	SignIn(ctx context.Context, creds session.Credentials) (models.Profile, error)
}

// RegisterService creates accounts.
type RegisterService interface {
	Register(ctx context.Context, reg session.Registration) (models.Profile, error)
}

// AuthHandler owns the register, login and profile endpoints.
type AuthHandler struct {
	signIn    SignInService
	registrar RegisterService
	store     storage.UserStore
	tokens    *auth.TokenManager
	log       logging.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(signIn SignInService, registrar RegisterService, store storage.UserStore, tokens *auth.TokenManager, log logging.Logger) *AuthHandler {
	return &AuthHandler{signIn: signIn, registrar: registrar, store: store, tokens: tokens, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.Handle("/me", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	profile, err := h.registrar.Register(r.Context(), session.Registration{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		if field, ok := session.IsValidation(err); ok {
			respond.JSON(w, r, http.StatusBadRequest, err.Error(), dto.ValidationErrorResponse{Field: field})
			return
		}
		switch {
		case errors.Is(err, session.ErrAccountExists):
			respond.Error(w, r, http.StatusConflict, "user already exists")
		case errors.Is(err, session.ErrUnavailable):
			respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable, try again")
		default:
			h.log.Error(r.Context(), "register failed", "error", err)
			respond.Error(w, r, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, r, http.StatusCreated, "user created successfully", profile)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	profile, err := h.signIn.SignIn(r.Context(), session.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if field, ok := session.IsValidation(err); ok {
			respond.JSON(w, r, http.StatusBadRequest, err.Error(), dto.ValidationErrorResponse{Field: field})
			return
		}
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			respond.Error(w, r, http.StatusUnauthorized, session.ErrInvalidCredentials.Error())
		case errors.Is(err, session.ErrUnavailable):
			respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable, try again")
		default:
			h.log.Warn(r.Context(), "login aborted", "error", err)
			respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable, try again")
		}
		return
	}

	token, err := h.tokens.Generate(profile)
	if err != nil {
		h.log.Error(r.Context(), "token generation failed", "error", err)
		respond.Error(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, r, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: profile})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())

	user, err := h.store.FindByEmail(r.Context(), claims.Email)
	switch {
	case err == nil && user.ID == claims.UserID:
		respond.JSON(w, r, http.StatusOK, "ok", user.Profile())
	case err == nil, errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrAmbiguous):
		respond.Error(w, r, http.StatusUnauthorized, "account no longer exists")
	default:
		h.log.Error(r.Context(), "profile lookup failed", "error", err)
		respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable, try again")
	}
}
