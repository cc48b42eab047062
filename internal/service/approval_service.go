package service

import (
	"context"
	"errors"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/workflow"
	"procurement/pkg/apperr"

	"gorm.io/gorm"
)

// DTOs for request validation
type DecideRequest struct {
	Comments string `json:"comments"`
}

// ApprovalService exposes the approval queue and the decide entrypoints of
// the workflow engine
type ApprovalService interface {
	ListApprovals(ctx context.Context, filter repository.ApprovalFilter, actor *model.Account) ([]model.Approval, int64, error)
	GetApproval(ctx context.Context, id string) (*model.Approval, error)
	Approve(ctx context.Context, id string, comments string, actor *model.Account) (*model.Approval, error)
	Reject(ctx context.Context, id string, comments string, actor *model.Account) (*model.Approval, error)
}

type approvalService struct {
	approvals repository.ApprovalRepository
	engine    *workflow.Engine
}

// NewApprovalService returns a new instance of ApprovalService
func NewApprovalService(approvals repository.ApprovalRepository, engine *workflow.Engine) ApprovalService {
	return &approvalService{approvals: approvals, engine: engine}
}

// ListApprovals returns the approval queue. Requires approver rank — the
// queue exposes who signed off on what.
func (s *approvalService) ListApprovals(ctx context.Context, filter repository.ApprovalFilter, actor *model.Account) ([]model.Approval, int64, error) {
	if err := auth.RequireRank(actor, model.RoleApprover); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.approvals.List(ctx, filter)
}

func (s *approvalService) GetApproval(ctx context.Context, id string) (*model.Approval, error) {
	approval, err := s.approvals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("approval %s", id)
		}
		return nil, err
	}
	return approval, nil
}

func (s *approvalService) Approve(ctx context.Context, id string, comments string, actor *model.Account) (*model.Approval, error) {
	return s.engine.Decide(ctx, id, model.ApprovalApproved, comments, actor)
}

func (s *approvalService) Reject(ctx context.Context, id string, comments string, actor *model.Account) (*model.Approval, error) {
	return s.engine.Decide(ctx, id, model.ApprovalRejected, comments, actor)
}
