package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// AuditRepository defines the interface for data access of AuditLog entities
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository returns a new instance of AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var entries []model.AuditLog
	if err := query.
		Preload("Account").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
