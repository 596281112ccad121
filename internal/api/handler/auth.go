package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api/middleware"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler issues bearer tokens. Login is a mock: knowing a user's id or
// email is enough to act as them.
type AuthHandler struct {
	identity *service.IdentityService
	ttl      time.Duration
}

func NewAuthHandler(identity *service.IdentityService, ttl time.Duration) *AuthHandler {
	return &AuthHandler{identity: identity, ttl: ttl}
}

type loginRequest struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresIn int64     `json:"expires_in"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case strings.TrimSpace(req.UserID) != "":
		uid, parseErr := uuid.Parse(req.UserID)
		if parseErr != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "Invalid user_id")
			return
		}
		user, err = h.identity.GetUser(r.Context(), uid)
	case strings.TrimSpace(req.Email) != "":
		user, err = h.identity.ResolveUser(r.Context(), req.Email)
	default:
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "user_id or email is required")
		return
	}
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			RespondError(w, r, http.StatusNotFound, "user/not-found", "User not found")
			return
		}
		respondServiceError(w, r, err, "auth/login-failed", "Failed to look up user")
		return
	}

	ttl := h.ttl
	if ttl <= 0 {
		ttl = middleware.DefaultTokenTTL
	}
	token, err := middleware.IssueToken(user.ID.String(), user.Role, ttl)
	if err != nil {
		zap.L().Error("sign token failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "auth/token-signing-failed", "Failed to sign token")
		return
	}
	RespondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresIn: int64(ttl.Seconds()),
	})
}
