package repository

import (
	"context"
	"errors"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// FinalDecisionRepository defines the interface for data access of FinalDecision entities
type FinalDecisionRepository interface {
	Create(ctx context.Context, decision *model.FinalDecision) error
	GetByRFQ(ctx context.Context, rfqID string) (*model.FinalDecision, error)
	ExistsForRFQ(ctx context.Context, rfqID string) (bool, error)
}

type finalDecisionRepository struct {
	db *gorm.DB
}

// NewFinalDecisionRepository returns a new instance of FinalDecisionRepository
func NewFinalDecisionRepository(db *gorm.DB) FinalDecisionRepository {
	return &finalDecisionRepository{db: db}
}

func (r *finalDecisionRepository) Create(ctx context.Context, decision *model.FinalDecision) error {
	return GetDB(ctx, r.db).Create(decision).Error
}

func (r *finalDecisionRepository) GetByRFQ(ctx context.Context, rfqID string) (*model.FinalDecision, error) {
	var decision model.FinalDecision
	err := GetDB(ctx, r.db).
		Preload("Decider").
		Preload("Items").
		First(&decision, "rfq_id = ?", rfqID).Error
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

func (r *finalDecisionRepository) ExistsForRFQ(ctx context.Context, rfqID string) (bool, error) {
	var decision model.FinalDecision
	err := GetDB(ctx, r.db).Select("id").First(&decision, "rfq_id = ?", rfqID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
