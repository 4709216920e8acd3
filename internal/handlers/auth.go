package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/auth"
	"github.com/bookline/apiserver/internal/services"
	"github.com/bookline/apiserver/internal/store"
	"github.com/bookline/apiserver/internal/validate"
	"github.com/bookline/apiserver/types"
)

// AuthHandler provides registration, login and session-token middleware.
type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenIssuer
	log    *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, tokens *auth.TokenIssuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

// AuthRouter registers auth routes on the given router. Register and login
// deliberately bypass the token guard.
func AuthRouter(r chi.Router, users *services.UserService, tokens *auth.TokenIssuer, log *zap.Logger) {
	handler := NewAuthHandler(users, tokens, log)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(RequireAuth(tokens)).Get("/me", handler.Me)
}

// RequireAuth enforces a bearer token and injects the verified identity
// into the request context. A missing or malformed Authorization header is
// rejected before the token is ever parsed.
func RequireAuth(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing token", nil)
				return
			}

			identity, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthResponse is the payload returned by register and login.
type AuthResponse struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

// Register creates a new user account and returns it with a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req validate.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.users.GetByEmail(r.Context(), email); err == nil {
		respondError(w, h.log, apperr.New(apperr.KindConflict, "Email already in use"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, h.log, err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	user, err := h.users.Create(r.Context(), types.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		// The unique index wins the race when two registrations collide.
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondError(w, h.log, apperr.New(apperr.KindConflict, "Email already in use"))
			return
		}
		respondError(w, h.log, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login verifies credentials and returns the user with a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validate.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid credentials"))
			return
		}
		respondError(w, h.log, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
			return
		}
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, user)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
