package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants, ordered by rank (lowest first)
const (
	RoleRequester  = "requester"
	RoleApprover   = "approver"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// roleRanks is the single source of truth for the role hierarchy.
// Hierarchical checks must compare ranks, never role strings.
var roleRanks = map[string]int{
	RoleRequester:  1,
	RoleApprover:   2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// RoleRank returns the rank of a role and whether the role is known.
func RoleRank(role string) (int, bool) {
	rank, ok := roleRanks[role]
	return rank, ok
}

// ValidRole reports whether role is one of the defined roles.
func ValidRole(role string) bool {
	_, ok := roleRanks[role]
	return ok
}

// Account represents an authenticated identity in the procurement system
type Account struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password hash from JSON responses
	Role      string         `gorm:"type:varchar(50);not null" json:"role"`
	IsActive  bool           `gorm:"default:true;not null" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete — accounts are never hard-deleted
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
