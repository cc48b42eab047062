package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/workflow"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs for request validation
type QuotationItemInput struct {
	RFQItemID    string          `json:"rfq_item_id" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	LeadTimeDays int             `json:"lead_time_days"`
	Note         string          `json:"note"`
}

type CreateQuotationRequest struct {
	RFQID      string               `json:"rfq_id" binding:"required"`
	SupplierID string               `json:"supplier_id" binding:"required"`
	ValidUntil *time.Time           `json:"valid_until"`
	Note       string               `json:"note"`
	Items      []QuotationItemInput `json:"items" binding:"required,min=1,dive"`
}

// QuotationService defines the business logic for supplier quotation entry
// and its approval sub-state
type QuotationService interface {
	CreateQuotation(ctx context.Context, req CreateQuotationRequest, actor *model.Account) (*model.Quotation, error)
	GetQuotation(ctx context.Context, id string) (*model.Quotation, error)
	ListByRFQ(ctx context.Context, rfqID string) ([]model.Quotation, error)
	SubmitQuotation(ctx context.Context, id string, actor *model.Account) (*model.Quotation, error)
}

type quotationService struct {
	quotations repository.QuotationRepository
	rfqs       repository.RFQRepository
	suppliers  repository.SupplierRepository
	audits     repository.AuditRepository
	engine     *workflow.Engine
}

// NewQuotationService returns a new instance of QuotationService
func NewQuotationService(
	quotations repository.QuotationRepository,
	rfqs repository.RFQRepository,
	suppliers repository.SupplierRepository,
	audits repository.AuditRepository,
	engine *workflow.Engine,
) QuotationService {
	return &quotationService{quotations: quotations, rfqs: rfqs, suppliers: suppliers, audits: audits, engine: engine}
}

// quotable reports whether an RFQ is still accepting quotations.
func quotable(status string) bool {
	switch status {
	case model.RFQStatusSubmitted, model.RFQStatusAdminApproved, model.RFQStatusSuperAdminApproved:
		return true
	}
	return false
}

// CreateQuotation records a supplier's priced response as a draft. Requires
// approver rank (procurement staff enter quotations on suppliers' behalf).
func (s *quotationService) CreateQuotation(ctx context.Context, req CreateQuotationRequest, actor *model.Account) (*model.Quotation, error) {
	if err := auth.RequireRank(actor, model.RoleApprover); err != nil {
		return nil, err
	}

	rfq, err := s.rfqs.GetByID(ctx, req.RFQID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("rfq %s", req.RFQID)
		}
		return nil, err
	}
	if !quotable(rfq.Status) {
		return nil, apperr.Rule(apperr.ReasonWrongState, "rfq %s is %s and not accepting quotations", rfq.RFQCode, rfq.Status)
	}

	supplier, err := s.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("supplier %s", req.SupplierID)
		}
		return nil, err
	}
	if supplier.Status != model.SupplierStatusApproved {
		return nil, apperr.Rule(apperr.ReasonWrongState, "supplier %s is %s, only APPROVED suppliers may quote", supplier.Name, supplier.Status)
	}

	rfqItems, err := s.rfqs.GetItems(ctx, req.RFQID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(rfqItems))
	for _, it := range rfqItems {
		known[it.ID] = true
	}

	items := make([]model.QuotationItem, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, in := range req.Items {
		itemID, err := uuid.Parse(in.RFQItemID)
		if err != nil {
			return nil, apperr.Validationf("invalid rfq item id %q", in.RFQItemID)
		}
		if !known[itemID] {
			return nil, apperr.Validationf("rfq item %s does not belong to rfq %s", itemID, rfq.RFQCode)
		}
		if seen[itemID] {
			return nil, apperr.Validationf("rfq item %s quoted twice", itemID)
		}
		seen[itemID] = true
		if in.UnitPrice.IsNegative() {
			return nil, apperr.Validationf("unit price for rfq item %s must not be negative", itemID)
		}
		items = append(items, model.QuotationItem{
			RFQItemID:    itemID,
			UnitPrice:    in.UnitPrice,
			LeadTimeDays: in.LeadTimeDays,
			Note:         in.Note,
		})
	}

	quotation := &model.Quotation{
		RFQID:      rfq.ID,
		SupplierID: supplier.ID,
		Status:     model.QuotationStatusDraft,
		ValidUntil: req.ValidUntil,
		Note:       req.Note,
		EnteredBy:  actor.ID,
		Items:      items,
	}
	if err := s.quotations.Create(ctx, quotation); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]interface{}{"rfq_id": req.RFQID, "supplier_id": req.SupplierID, "item_count": len(items)})
	if err := s.audits.Create(ctx, &model.AuditLog{
		AccountID:  &actor.ID,
		Action:     model.ActionCreateQuotation,
		EntityID:   quotation.ID.String(),
		EntityName: supplier.Name,
		Details:    string(details),
	}); err != nil {
		return nil, err
	}

	return s.quotations.GetByID(ctx, quotation.ID.String())
}

func (s *quotationService) GetQuotation(ctx context.Context, id string) (*model.Quotation, error) {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("quotation %s", id)
		}
		return nil, err
	}
	return quotation, nil
}

func (s *quotationService) ListByRFQ(ctx context.Context, rfqID string) ([]model.Quotation, error) {
	return s.quotations.ListByRFQ(ctx, rfqID)
}

func (s *quotationService) SubmitQuotation(ctx context.Context, id string, actor *model.Account) (*model.Quotation, error) {
	return s.engine.SubmitQuotation(ctx, id, actor)
}
