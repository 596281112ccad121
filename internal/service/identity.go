package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// IdentityService owns user records and resolves email addresses to users.
type IdentityService struct {
	store QueryStore
}

func NewIdentityService(store QueryStore) *IdentityService {
	return &IdentityService{store: store}
}

type CreateUserInput struct {
	Username   string
	Email      string
	Role       string
	ReferrerID *uuid.UUID
}

func (s *IdentityService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, in.Email)
	}
	switch in.Role {
	case domain.RoleUser, domain.RoleAgent, domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, in.Role)
	}

	var referrer pgtype.UUID
	if in.ReferrerID != nil {
		referrer = repository.ToPgUUID(*in.ReferrerID)
		if _, err := s.store.Queries().GetUser(ctx, referrer); err != nil {
			return nil, notFound(err, models.ErrUserNotFound, "get referrer")
		}
	}

	row, err := s.store.Queries().CreateUser(ctx, repository.CreateUserParams{
		ID:         repository.ToPgUUID(uuid.New()),
		Username:   in.Username,
		Email:      in.Email,
		Role:       in.Role,
		ReferrerID: referrer,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return toUser(row), nil
}

func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := s.store.Queries().GetUser(ctx, repository.ToPgUUID(id))
	if err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "get user")
	}
	return toUser(row), nil
}

// ResolveUser looks a user up by email, case-insensitively.
func (s *IdentityService) ResolveUser(ctx context.Context, email string) (*models.User, error) {
	row, err := s.store.Queries().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "get user by email")
	}
	return toUser(row), nil
}
