package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for request validation
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

// DTO for returning Account without exposing the password hash
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
}

// AccountService defines the business logic for Account administration
type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest, actor *model.Account) (*AccountResponse, error)
	GetAccountByID(ctx context.Context, id string, actor *model.Account) (*AccountResponse, error)
	ListAccounts(ctx context.Context, page, limit int, actor *model.Account) ([]AccountResponse, int64, error)
	DeactivateAccount(ctx context.Context, id string, actor *model.Account) (*AccountResponse, error)
}

type accountService struct {
	accounts repository.AccountRepository
	audits   repository.AuditRepository
	hasher   auth.PasswordHasher
}

// NewAccountService returns a new instance of AccountService
func NewAccountService(accounts repository.AccountRepository, audits repository.AuditRepository, hasher auth.PasswordHasher) AccountService {
	return &accountService{accounts: accounts, audits: audits, hasher: hasher}
}

func toAccountResponse(a *model.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// CreateAccount creates a new account. Requires admin rank; granting a role
// ranked above the actor's own is refused.
func (s *accountService) CreateAccount(ctx context.Context, req CreateAccountRequest, actor *model.Account) (*AccountResponse, error) {
	if err := auth.RequireRank(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, apperr.Validationf("invalid role %q", req.Role)
	}
	if err := auth.RequireRank(actor, req.Role); err != nil {
		return nil, apperr.PermissionDeniedf("cannot grant role %s above own rank", req.Role)
	}

	if _, err := s.accounts.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Validationf("username %q already exists", req.Username)
	}
	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validationf("email %q already exists", req.Email)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]string{"role": req.Role})
	if err := s.audits.Create(ctx, &model.AuditLog{
		AccountID:  &actor.ID,
		Action:     model.ActionCreateAccount,
		EntityID:   account.ID.String(),
		EntityName: account.Username,
		Details:    string(details),
	}); err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

func (s *accountService) GetAccountByID(ctx context.Context, id string, actor *model.Account) (*AccountResponse, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid account id %q", id)
	}
	// Accounts may read themselves; anything else needs admin rank.
	if err := auth.RequireOwnerOrRank(actor, accountID, model.RoleAdmin); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account %s", id)
		}
		return nil, err
	}
	return toAccountResponse(account), nil
}

func (s *accountService) ListAccounts(ctx context.Context, page, limit int, actor *model.Account) ([]AccountResponse, int64, error) {
	if err := auth.RequireRank(actor, model.RoleAdmin); err != nil {
		return nil, 0, err
	}

	accounts, total, err := s.accounts.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, *toAccountResponse(&accounts[i]))
	}
	return responses, total, nil
}

// DeactivateAccount clears the active flag. Accounts are never hard-deleted —
// historical approvals keep referencing them.
func (s *accountService) DeactivateAccount(ctx context.Context, id string, actor *model.Account) (*AccountResponse, error) {
	if err := auth.RequireRank(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account %s", id)
		}
		return nil, err
	}
	if err := auth.RequireRank(actor, account.Role); err != nil {
		return nil, apperr.PermissionDeniedf("cannot deactivate account ranked above own rank")
	}

	account.IsActive = false
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	if err := s.audits.Create(ctx, &model.AuditLog{
		AccountID:  &actor.ID,
		Action:     model.ActionDeactivateAccount,
		EntityID:   account.ID.String(),
		EntityName: account.Username,
	}); err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}
