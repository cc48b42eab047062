package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// RFQFilter narrows RFQ listings
type RFQFilter struct {
	Status      string
	RequesterID string
	Page        int
	Limit       int
}

// RFQRepository defines the interface for data access of RFQ entities
type RFQRepository interface {
	Create(ctx context.Context, rfq *model.RFQ) error
	GetByID(ctx context.Context, id string) (*model.RFQ, error)
	GetWithRelations(ctx context.Context, id string) (*model.RFQ, error)
	List(ctx context.Context, filter RFQFilter) ([]model.RFQ, int64, error)
	Update(ctx context.Context, rfq *model.RFQ) error
	// UpdateStatus performs a compare-and-set: the row is written only while
	// its status still equals from. Returns the number of rows affected.
	UpdateStatus(ctx context.Context, id string, from, to string) (int64, error)
	GetItems(ctx context.Context, rfqID string) ([]model.RFQItem, error)
	ReplaceItems(ctx context.Context, rfqID string, items []model.RFQItem) error
}

type rfqRepository struct {
	db *gorm.DB
}

// NewRFQRepository returns a new instance of RFQRepository
func NewRFQRepository(db *gorm.DB) RFQRepository {
	return &rfqRepository{db: db}
}

func (r *rfqRepository) Create(ctx context.Context, rfq *model.RFQ) error {
	return GetDB(ctx, r.db).Create(rfq).Error
}

func (r *rfqRepository) GetByID(ctx context.Context, id string) (*model.RFQ, error) {
	var rfq model.RFQ
	if err := GetDB(ctx, r.db).First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) GetWithRelations(ctx context.Context, id string) (*model.RFQ, error) {
	var rfq model.RFQ
	err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Items").
		Preload("Quotations.Items").
		Preload("FinalDecision.Items").
		First(&rfq, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) List(ctx context.Context, filter RFQFilter) ([]model.RFQ, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.RFQ{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != "" {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var rfqs []model.RFQ
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&rfqs).Error; err != nil {
		return nil, 0, err
	}

	return rfqs, total, nil
}

func (r *rfqRepository) Update(ctx context.Context, rfq *model.RFQ) error {
	return GetDB(ctx, r.db).Save(rfq).Error
}

func (r *rfqRepository) UpdateStatus(ctx context.Context, id string, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.RFQ{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *rfqRepository) GetItems(ctx context.Context, rfqID string) ([]model.RFQItem, error) {
	var items []model.RFQItem
	if err := GetDB(ctx, r.db).Where("rfq_id = ?", rfqID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *rfqRepository) ReplaceItems(ctx context.Context, rfqID string, items []model.RFQItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("rfq_id = ?", rfqID).Delete(&model.RFQItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}
