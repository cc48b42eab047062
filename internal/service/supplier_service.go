package service

import (
	"context"
	"encoding/json"
	"errors"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/workflow"
	"procurement/pkg/apperr"

	"gorm.io/gorm"
)

// DTOs for request validation
type RegisterSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	TaxCode       string `json:"tax_code"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	BankAccount   string `json:"bank_account"`
}

// SupplierService defines the business logic for supplier registration and
// lookup. New suppliers enter the approval chain before they may quote.
type SupplierService interface {
	RegisterSupplier(ctx context.Context, req RegisterSupplierRequest, actor *model.Account) (*model.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error)
}

type supplierService struct {
	suppliers repository.SupplierRepository
	audits    repository.AuditRepository
	txm       repository.TransactionManager
	engine    *workflow.Engine
}

// NewSupplierService returns a new instance of SupplierService
func NewSupplierService(suppliers repository.SupplierRepository, audits repository.AuditRepository, txm repository.TransactionManager, engine *workflow.Engine) SupplierService {
	return &supplierService{suppliers: suppliers, audits: audits, txm: txm, engine: engine}
}

// RegisterSupplier creates a PENDING supplier and opens its admin-tier
// approval in the same transaction.
func (s *supplierService) RegisterSupplier(ctx context.Context, req RegisterSupplierRequest, actor *model.Account) (*model.Supplier, error) {
	if err := auth.RequireRank(actor, model.RoleApprover); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		TaxCode:       req.TaxCode,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		BankAccount:   req.BankAccount,
		Status:        model.SupplierStatusPending,
		RegisteredBy:  &actor.ID,
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.suppliers.Create(txCtx, supplier); err != nil {
			return err
		}
		if err := s.engine.OpenSupplierApproval(txCtx, supplier.ID.String(), actor); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]string{"tax_code": req.TaxCode})
		return s.audits.Create(txCtx, &model.AuditLog{
			AccountID:  &actor.ID,
			Action:     model.ActionRegisterSupplier,
			EntityID:   supplier.ID.String(),
			EntityName: supplier.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.suppliers.GetByID(ctx, supplier.ID.String())
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("supplier %s", id)
		}
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.suppliers.List(ctx, status, page, limit)
}
