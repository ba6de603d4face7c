package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement/internal/cache"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/token"
	"procurement/pkg/api"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService registers users and issues/revokes their access tokens.
type AuthService interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context, tokenString string) error
	Me(ctx context.Context, id uuid.UUID) (*api.User, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *token.Manager
	blacklist cache.TokenBlacklist
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager, blacklist cache.TokenBlacklist) AuthService {
	return &authService{users: users, tokens: tokens, blacklist: blacklist}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	if !api.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrInvalidInput, api.RoleManager, api.RoleEmployee)
	}

	email := normalizeEmail(req.Username)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  string(hashed),
		Role:      req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithField("user_id", user.ID.String()).WithField("role", user.Role).Info("user registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes tokenString for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		// already unusable
		return nil
	}
	return s.blacklist.Revoke(ctx, tokenString, s.tokens.Remaining(claims))
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (*api.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := toUser(*user)
	return &out, nil
}

func (s *authService) issue(user *model.User) (*api.AuthResponse, error) {
	tok, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &api.AuthResponse{Token: tok, User: toUser(*user)}, nil
}
