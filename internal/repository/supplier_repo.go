package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// SupplierRepository defines the interface for data access of Supplier entities
type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error)
	// UpdateStatus performs a compare-and-set on the supplier status.
	UpdateStatus(ctx context.Context, id string, from, to string) (int64, error)
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository returns a new instance of SupplierRepository
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

func (r *supplierRepository) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := GetDB(ctx, r.db).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, status string, page, limit int) ([]model.Supplier, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Supplier{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var suppliers []model.Supplier
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

func (r *supplierRepository) UpdateStatus(ctx context.Context, id string, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Supplier{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
