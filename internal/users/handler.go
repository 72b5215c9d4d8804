package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

// Handler handles registration, login and logout.
type Handler struct {
	store    Store
	sessions *session.Manager
	ttl      time.Duration
	logger   *logging.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(store Store, sessions *session.Manager, ttl time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, sessions: sessions, ttl: ttl, logger: logger}
}

// Register handles POST /register. Self-registration always creates a
// patient account; doctors are created by admins.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	user, err := h.store.CreatePatientUser(r.Context(), &req, string(hash))
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			http.Error(w, ErrDuplicateUsername.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to register user", "error", err, "username", req.Username)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient registered", "user_id", user.ID, "username", user.Username)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login lookup failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Issue(session.Identity{
		UserID: user.ID,
		Role:   string(user.Role),
		Name:   user.Name,
	})
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", user.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.ttl.Seconds()),
	})

	h.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token:  token,
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
}

// Logout handles GET /logout. The session token is revoked server-side for
// its remaining lifetime and the cookie cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := session.TokenFromRequest(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.logger.Warn("failed to revoke session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
}
