package auth

import (
	"testing"

	"procurement/internal/model"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func accountWithRole(role string) *model.Account {
	return &model.Account{ID: uuid.New(), Role: role, IsActive: true}
}

func TestRequireRank(t *testing.T) {
	tests := []struct {
		role    string
		minRole string
		allowed bool
	}{
		{model.RoleRequester, model.RoleRequester, true},
		{model.RoleRequester, model.RoleApprover, false},
		{model.RoleRequester, model.RoleAdmin, false},
		{model.RoleApprover, model.RoleRequester, true},
		{model.RoleApprover, model.RoleApprover, true},
		{model.RoleApprover, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleApprover, true},
		{model.RoleAdmin, model.RoleAdmin, true},
		{model.RoleAdmin, model.RoleSuperAdmin, false},
		{model.RoleSuperAdmin, model.RoleAdmin, true},
		{model.RoleSuperAdmin, model.RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		err := RequireRank(accountWithRole(tt.role), tt.minRole)
		if tt.allowed {
			assert.NoError(t, err, "%s vs min %s", tt.role, tt.minRole)
		} else {
			assert.ErrorIs(t, err, apperr.ErrPermissionDenied, "%s vs min %s", tt.role, tt.minRole)
		}
	}
}

func TestRequireRank_UnknownRoles(t *testing.T) {
	assert.ErrorIs(t, RequireRank(accountWithRole("intern"), model.RoleAdmin), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, RequireRank(accountWithRole(model.RoleSuperAdmin), "czar"), apperr.ErrPermissionDenied)
}

func TestRequireExactRole(t *testing.T) {
	assert.NoError(t, RequireExactRole(accountWithRole(model.RoleRequester), model.RoleRequester))
	// Higher rank does not substitute for an exact-role gate
	assert.ErrorIs(t, RequireExactRole(accountWithRole(model.RoleSuperAdmin), model.RoleRequester), apperr.ErrPermissionDenied)
}

func TestRequireOwnerOrRank(t *testing.T) {
	owner := accountWithRole(model.RoleRequester)
	admin := accountWithRole(model.RoleAdmin)
	stranger := accountWithRole(model.RoleRequester)

	assert.NoError(t, RequireOwnerOrRank(owner, owner.ID, model.RoleAdmin))
	assert.NoError(t, RequireOwnerOrRank(admin, owner.ID, model.RoleAdmin))
	assert.ErrorIs(t, RequireOwnerOrRank(stranger, owner.ID, model.RoleAdmin), apperr.ErrPermissionDenied)
}
