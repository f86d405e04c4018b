package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/payflowhq/payflow-backend/internal/auth"
	"github.com/payflowhq/payflow-backend/internal/config"
	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/models/dto"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

const bcryptCost = 12

// AuthHandler owns the signup and signin endpoints. Both issue the session
// token as an httpOnly cookie.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	cfg    config.Config
	log    *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, cfg: cfg, log: log}
}

// Signup registers a user and its seeded account, then signs the user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateSignup(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: passwordHash,
	}
	created, err := h.store.CreateUser(r.Context(), user, h.cfg.InitialBalance, h.cfg.Currency)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.log.Error("create user failed", "error", err, "email", user.Email)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !h.issueSession(w, created.ID) {
		return
	}
	respond.JSON(w, http.StatusCreated, "user created", created)
}

// Signin verifies credentials and issues a fresh session cookie.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.store.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("fetch user failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !h.issueSession(w, user.ID) {
		return
	}
	respond.JSON(w, http.StatusOK, "signed in", user)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, userID int64) bool {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		h.log.Error("generate token failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return true
}

func validateSignup(req dto.SignupRequest) error {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Name) == "" {
		return errors.New("email and name are required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return errors.New("invalid email address")
	}
	if len(req.Password) < 8 || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
