package auth

import (
	"context"
	"testing"
	"time"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newIdentityFixture(t *testing.T) (*IdentityResolver, *model.Account, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Account{}))

	account := &model.Account{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "x",
		Role:     model.RoleRequester,
		IsActive: true,
	}
	require.NoError(t, db.Create(account).Error)

	return NewIdentityResolver(repository.NewAccountRepository(db)), account, db
}

func accessClaims(subject string) *Claims {
	return &Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestResolve_ActiveAccount(t *testing.T) {
	resolver, account, _ := newIdentityFixture(t)

	resolved, err := resolver.Resolve(context.Background(), accessClaims(account.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.ID)
	assert.Equal(t, account.Username, resolved.Username)
}

func TestResolve_RefreshTokenRejected(t *testing.T) {
	resolver, account, _ := newIdentityFixture(t)

	claims := accessClaims(account.ID.String())
	claims.TokenType = TokenTypeRefresh

	_, err := resolver.Resolve(context.Background(), claims)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolve_UnknownSubject(t *testing.T) {
	resolver, _, _ := newIdentityFixture(t)

	_, err := resolver.Resolve(context.Background(), accessClaims("3f6bbf25-61b5-47f0-9cfa-1c02eb8cb2ef"))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolve_InactiveAccount(t *testing.T) {
	resolver, account, db := newIdentityFixture(t)
	require.NoError(t, db.Model(&model.Account{}).Where("id = ?", account.ID).Update("is_active", false).Error)

	_, err := resolver.Resolve(context.Background(), accessClaims(account.ID.String()))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolve_NilClaims(t *testing.T) {
	resolver, _, _ := newIdentityFixture(t)

	_, err := resolver.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
