package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// QuotationRepository defines the interface for data access of Quotation entities
type QuotationRepository interface {
	Create(ctx context.Context, quotation *model.Quotation) error
	GetByID(ctx context.Context, id string) (*model.Quotation, error)
	ListByRFQ(ctx context.Context, rfqID string) ([]model.Quotation, error)
	// UpdateStatus performs a compare-and-set on the quotation status.
	UpdateStatus(ctx context.Context, id string, from, to string) (int64, error)
}

type quotationRepository struct {
	db *gorm.DB
}

// NewQuotationRepository returns a new instance of QuotationRepository
func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, quotation *model.Quotation) error {
	return GetDB(ctx, r.db).Create(quotation).Error
}

func (r *quotationRepository) GetByID(ctx context.Context, id string) (*model.Quotation, error) {
	var quotation model.Quotation
	err := GetDB(ctx, r.db).
		Preload("Supplier").
		Preload("Items").
		First(&quotation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *quotationRepository) ListByRFQ(ctx context.Context, rfqID string) ([]model.Quotation, error) {
	var quotations []model.Quotation
	err := GetDB(ctx, r.db).
		Preload("Supplier").
		Preload("Items").
		Where("rfq_id = ?", rfqID).
		Order("created_at ASC").
		Find(&quotations).Error
	if err != nil {
		return nil, err
	}
	return quotations, nil
}

func (r *quotationRepository) UpdateStatus(ctx context.Context, id string, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Quotation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
