package service

import (
	"context"
	"testing"
	"time"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory db")

	require.NoError(t, db.AutoMigrate(
		&model.Account{},
		&model.Supplier{},
		&model.RFQ{},
		&model.RFQItem{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Approval{},
		&model.FinalDecision{},
		&model.FinalDecisionItem{},
		&model.AuditLog{},
	))

	return db
}

func seedAccount(t *testing.T, db *gorm.DB, username, role, password string, active bool) *model.Account {
	t.Helper()

	hasher := auth.NewBcryptHasher()
	hashed, err := hasher.Hash(password)
	require.NoError(t, err)

	account := &model.Account{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func newAuthFixture(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()

	db := newServiceDB(t)
	tokens := auth.NewTokenService([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(repository.NewAccountRepository(db), tokens, auth.NewBcryptHasher())
	return svc, db
}

func TestLogin(t *testing.T) {
	svc, db := newAuthFixture(t)
	ctx := context.Background()
	seedAccount(t, db, "alice", model.RoleRequester, "s3cret-pw", true)
	seedAccount(t, db, "mallory", model.RoleRequester, "s3cret-pw", false)

	t.Run("valid credentials", func(t *testing.T) {
		pair, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "s3cret-pw"})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "nobody", Password: "s3cret-pw"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "mallory", Password: "s3cret-pw"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})
}

func TestRefresh(t *testing.T) {
	svc, db := newAuthFixture(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice", model.RoleRequester, "s3cret-pw", true)

	pair, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "s3cret-pw"})
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		renewed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, renewed.AccessToken)
		assert.NotEmpty(t, renewed.RefreshToken)
	})

	t.Run("access token is not accepted for refresh", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.AccessToken})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("deactivated account stops renewing", func(t *testing.T) {
		require.NoError(t, db.Model(&model.Account{}).Where("id = ?", account.ID).Update("is_active", false).Error)
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})
}
