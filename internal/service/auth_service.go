package service

import (
	"context"

	"procurement/internal/auth"
	"procurement/internal/repository"
	"procurement/pkg/apperr"
)

// DTOs for request validation
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService defines the authentication entrypoints: credential login and
// refresh-token exchange.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPairResponse, error)
}

type authService struct {
	accounts repository.AccountRepository
	tokens   *auth.TokenService
	hasher   auth.PasswordHasher
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(accounts repository.AccountRepository, tokens *auth.TokenService, hasher auth.PasswordHasher) AuthService {
	return &authService{accounts: accounts, tokens: tokens, hasher: hasher}
}

// Login verifies the credentials and issues an access+refresh token pair.
// All failure modes collapse to Unauthenticated.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !account.IsActive {
		return nil, apperr.ErrUnauthenticated
	}
	if !s.hasher.Verify(req.Password, account.Password) {
		return nil, apperr.ErrUnauthenticated
	}

	access, refresh, err := s.tokens.IssuePair(account.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPairResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The account's
// active status is re-checked on every renewal — a deactivated account stops
// renewing as soon as its access token expires.
func (s *authService) Refresh(ctx context.Context, req RefreshRequest) (*TokenPairResponse, error) {
	claims, err := s.tokens.Validate(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, apperr.ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !account.IsActive {
		return nil, apperr.ErrUnauthenticated
	}

	access, refresh, err := s.tokens.IssuePair(account.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPairResponse{AccessToken: access, RefreshToken: refresh}, nil
}
