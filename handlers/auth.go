package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/middleware"
	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

// AuthService is implemented by *repository.AuthRepository.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthHandler struct {
	Auth      AuthService
	JWTSecret string
	Validator *validation.Validator
	Log       *zap.Logger
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type AuthResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := middleware.IssueToken(h.JWTSecret, user.ID.Hex(), user.Email, time.Now())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, Profile: user.Profile()})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	user, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	user, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// ForgotPassword always answers 202 for well-formed requests so callers cannot discover
// which emails have accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Auth.SendPasswordResetEmail(r.Context(), req.Email); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "if an account exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout has nothing to revoke: tokens are stateless and clients drop them.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
