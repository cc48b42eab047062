package service

import (
	"context"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
)

// AuditService exposes the audit trail to administrators
type AuditService interface {
	ListAuditLogs(ctx context.Context, action string, page, limit int, actor *model.Account) ([]model.AuditLog, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

// NewAuditService returns a new instance of AuditService
func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) ListAuditLogs(ctx context.Context, action string, page, limit int, actor *model.Account) ([]model.AuditLog, int64, error) {
	if err := auth.RequireRank(actor, model.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.audits.List(ctx, action, page, limit)
}
