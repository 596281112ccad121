package handler

import (
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
)

type UserHandler struct {
	identity *service.IdentityService
}

func NewUserHandler(identity *service.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

type createUserRequest struct {
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role,omitempty"`
	ReferrerID *uuid.UUID `json:"referrer_id,omitempty"`
}

// CreateUser registers a wallet holder. Self-registration always yields the
// user role; agents and admins are created by an admin caller.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role := domain.RoleUser
	if a, err := requestActor(r); err == nil && a.isAdmin() && req.Role != "" {
		role = req.Role
	}

	user, err := h.identity.CreateUser(r.Context(), service.CreateUserInput{
		Username:   req.Username,
		Email:      req.Email,
		Role:       role,
		ReferrerID: req.ReferrerID,
	})
	if err != nil {
		respondServiceError(w, r, err, "user/create-failed", "Failed to create user")
		return
	}
	RespondJSON(w, http.StatusCreated, user)
}
