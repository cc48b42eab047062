package repository

import (
	"context"
	"time"

	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalFilter narrows approval listings
type ApprovalFilter struct {
	Kind     string
	TargetID string
	Status   string
	Page     int
	Limit    int
}

// ApprovalRepository defines the interface for data access of Approval entities
type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	GetByID(ctx context.Context, id string) (*model.Approval, error)
	List(ctx context.Context, filter ApprovalFilter) ([]model.Approval, int64, error)
	CountPendingForTarget(ctx context.Context, kind string, targetID string) (int64, error)
	// Decide performs a compare-and-set: the approval is written only while
	// still PENDING. Returns the number of rows affected; zero means another
	// caller decided it first.
	Decide(ctx context.Context, id string, status string, approverID uuid.UUID, comments string, decidedAt time.Time) (int64, error)
}

type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository returns a new instance of ApprovalRepository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*model.Approval, error) {
	var approval model.Approval
	if err := GetDB(ctx, r.db).Preload("Approver").First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) List(ctx context.Context, filter ApprovalFilter) ([]model.Approval, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Approval{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var approvals []model.Approval
	if err := query.
		Preload("Approver").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&approvals).Error; err != nil {
		return nil, 0, err
	}

	return approvals, total, nil
}

func (r *approvalRepository) CountPendingForTarget(ctx context.Context, kind string, targetID string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Approval{}).
		Where("kind = ? AND target_id = ? AND status = ?", kind, targetID, model.ApprovalPending).
		Count(&count).Error
	return count, err
}

func (r *approvalRepository) Decide(ctx context.Context, id string, status string, approverID uuid.UUID, comments string, decidedAt time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Approval{}).
		Where("id = ? AND status = ?", id, model.ApprovalPending).
		Updates(map[string]interface{}{
			"status":      status,
			"approver_id": approverID,
			"comments":    comments,
			"decided_at":  decidedAt,
		})
	return res.RowsAffected, res.Error
}
