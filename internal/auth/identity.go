package auth

import (
	"context"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"
)

// IdentityResolver turns validated token claims into the caller's account.
// Second step of the pipeline: token -> claims -> account -> role checks.
type IdentityResolver struct {
	accounts repository.AccountRepository
}

// NewIdentityResolver returns a new IdentityResolver.
func NewIdentityResolver(accounts repository.AccountRepository) *IdentityResolver {
	return &IdentityResolver{accounts: accounts}
}

// Resolve loads the account behind the claims. Refresh tokens never resolve
// an identity for API calls; unknown subjects and inactive accounts fail the
// same way.
func (r *IdentityResolver) Resolve(ctx context.Context, claims *Claims) (*model.Account, error) {
	if claims == nil || claims.TokenType != TokenTypeAccess {
		return nil, apperr.ErrUnauthenticated
	}

	account, err := r.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !account.IsActive {
		return nil, apperr.ErrUnauthenticated
	}

	return account, nil
}
