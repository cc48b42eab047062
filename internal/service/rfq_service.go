package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/workflow"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for request validation
type RFQItemInput struct {
	ItemName      string `json:"item_name" binding:"required"`
	Specification string `json:"specification"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	Unit          string `json:"unit"`
}

type CreateRFQRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Items       []RFQItemInput `json:"items" binding:"required,min=1,dive"`
}

type UpdateRFQRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Items       []RFQItemInput `json:"items" binding:"omitempty,min=1,dive"`
}

type FinalizeRFQRequest struct {
	Note  string                            `json:"note"`
	Items []workflow.FinalDecisionItemInput `json:"items" binding:"required,min=1,dive"`
}

// RFQService defines the business logic for RFQ records and their workflow
// entrypoints
type RFQService interface {
	CreateRFQ(ctx context.Context, req CreateRFQRequest, actor *model.Account) (*model.RFQ, error)
	UpdateRFQ(ctx context.Context, id string, req UpdateRFQRequest, actor *model.Account) (*model.RFQ, error)
	GetRFQ(ctx context.Context, id string) (*model.RFQ, error)
	ListRFQs(ctx context.Context, filter repository.RFQFilter) ([]model.RFQ, int64, error)
	SubmitRFQ(ctx context.Context, id string, actor *model.Account) (*model.RFQ, error)
	FinalizeRFQ(ctx context.Context, id string, req FinalizeRFQRequest, actor *model.Account) (*model.FinalDecision, error)
	GetFinalDecision(ctx context.Context, rfqID string) (*model.FinalDecision, error)
}

type rfqService struct {
	rfqs      repository.RFQRepository
	decisions repository.FinalDecisionRepository
	audits    repository.AuditRepository
	engine    *workflow.Engine
}

// NewRFQService returns a new instance of RFQService
func NewRFQService(rfqs repository.RFQRepository, decisions repository.FinalDecisionRepository, audits repository.AuditRepository, engine *workflow.Engine) RFQService {
	return &rfqService{rfqs: rfqs, decisions: decisions, audits: audits, engine: engine}
}

// CreateRFQ creates a draft RFQ owned by the acting requester.
func (s *rfqService) CreateRFQ(ctx context.Context, req CreateRFQRequest, actor *model.Account) (*model.RFQ, error) {
	if err := auth.RequireExactRole(actor, model.RoleRequester); err != nil {
		return nil, err
	}

	items, err := buildRFQItems(req.Items)
	if err != nil {
		return nil, err
	}

	rfq := &model.RFQ{
		RFQCode:     newRFQCode(),
		Title:       req.Title,
		Description: req.Description,
		Status:      model.RFQStatusDraft,
		RequesterID: actor.ID,
		Items:       items,
	}
	if err := s.rfqs.Create(ctx, rfq); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]interface{}{"title": req.Title, "item_count": len(items)})
	if err := s.audits.Create(ctx, &model.AuditLog{
		AccountID:  &actor.ID,
		Action:     model.ActionCreateRFQ,
		EntityID:   rfq.ID.String(),
		EntityName: rfq.RFQCode,
		Details:    string(details),
	}); err != nil {
		return nil, err
	}

	return s.rfqs.GetWithRelations(ctx, rfq.ID.String())
}

// UpdateRFQ edits a draft. Only the owner may edit, and only while DRAFT.
func (s *rfqService) UpdateRFQ(ctx context.Context, id string, req UpdateRFQRequest, actor *model.Account) (*model.RFQ, error) {
	rfq, err := s.rfqs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("rfq %s", id)
		}
		return nil, err
	}

	if rfq.RequesterID != actor.ID {
		return nil, apperr.PermissionDeniedf("only the owning requester may edit rfq %s", rfq.RFQCode)
	}
	if rfq.Status != model.RFQStatusDraft {
		return nil, apperr.Rule(apperr.ReasonWrongState, "rfq %s is %s, only DRAFT can be edited", rfq.RFQCode, rfq.Status)
	}

	if req.Title != "" {
		rfq.Title = req.Title
	}
	if req.Description != "" {
		rfq.Description = req.Description
	}
	if err := s.rfqs.Update(ctx, rfq); err != nil {
		return nil, err
	}

	if len(req.Items) > 0 {
		items, err := buildRFQItems(req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].RFQID = rfq.ID
		}
		if err := s.rfqs.ReplaceItems(ctx, id, items); err != nil {
			return nil, err
		}
	}

	return s.rfqs.GetWithRelations(ctx, id)
}

func (s *rfqService) GetRFQ(ctx context.Context, id string) (*model.RFQ, error) {
	rfq, err := s.rfqs.GetWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("rfq %s", id)
		}
		return nil, err
	}
	return rfq, nil
}

func (s *rfqService) ListRFQs(ctx context.Context, filter repository.RFQFilter) ([]model.RFQ, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.rfqs.List(ctx, filter)
}

func (s *rfqService) SubmitRFQ(ctx context.Context, id string, actor *model.Account) (*model.RFQ, error) {
	return s.engine.SubmitRFQ(ctx, id, actor)
}

func (s *rfqService) FinalizeRFQ(ctx context.Context, id string, req FinalizeRFQRequest, actor *model.Account) (*model.FinalDecision, error) {
	return s.engine.FinalizeRFQ(ctx, id, req.Items, req.Note, actor)
}

func (s *rfqService) GetFinalDecision(ctx context.Context, rfqID string) (*model.FinalDecision, error) {
	decision, err := s.decisions.GetByRFQ(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("final decision for rfq %s", rfqID)
		}
		return nil, err
	}
	return decision, nil
}

func buildRFQItems(inputs []RFQItemInput) ([]model.RFQItem, error) {
	items := make([]model.RFQItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, apperr.Validationf("item %q quantity must be positive", in.ItemName)
		}
		items = append(items, model.RFQItem{
			ItemName:      in.ItemName,
			Specification: in.Specification,
			Quantity:      in.Quantity,
			Unit:          in.Unit,
		})
	}
	return items, nil
}

func newRFQCode() string {
	return fmt.Sprintf("RFQ-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])
}
