package auth

import (
	"procurement/internal/model"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
)

// Authorization guard: pure checks over (account, requirement). Rank
// comparison is canonical for hierarchical gates; exact-role checks exist only
// for non-hierarchical ones (e.g. only a requester submits their own RFQ).

// RequireRank permits accounts whose role ranks at or above minRole.
func RequireRank(account *model.Account, minRole string) error {
	have, ok := model.RoleRank(account.Role)
	if !ok {
		return apperr.PermissionDeniedf("unknown role %q", account.Role)
	}
	need, ok := model.RoleRank(minRole)
	if !ok {
		return apperr.PermissionDeniedf("unknown required role %q", minRole)
	}
	if have < need {
		return apperr.PermissionDeniedf("requires %s rank or above", minRole)
	}
	return nil
}

// RequireExactRole permits only accounts holding exactly the given role.
func RequireExactRole(account *model.Account, role string) error {
	if account.Role != role {
		return apperr.PermissionDeniedf("requires role %s", role)
	}
	return nil
}

// RequireOwnerOrRank permits the record's owner, or any account ranking at or
// above minRole.
func RequireOwnerOrRank(account *model.Account, ownerID uuid.UUID, minRole string) error {
	if account.ID == ownerID {
		return nil
	}
	return RequireRank(account, minRole)
}
