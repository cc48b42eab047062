package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
)

// AccountRepository defines the interface for data access of Account entities
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	List(ctx context.Context, page, limit int) ([]model.Account, int64, error)
	Update(ctx context.Context, account *model.Account) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new instance of AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).First(&account, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).First(&account, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, page, limit int) ([]model.Account, int64, error) {
	var accounts []model.Account
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Offset(offset).Limit(limit).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	return GetDB(ctx, r.db).Save(account).Error
}
