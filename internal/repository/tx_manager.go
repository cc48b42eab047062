package repository

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// TransactionManager manages database transactions via context injection.
// Every workflow transition runs its reads, compare-and-set writes and audit
// inserts through a single RunInTx call.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// Joining an in-flight transaction turns the nested call into a savepoint.
	return GetDB(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
