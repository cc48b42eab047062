package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalKind enum constants — the target variant of an approval
const (
	ApprovalKindRFQ       = "RFQ"
	ApprovalKindQuotation = "QUOTATION"
	ApprovalKindSupplier  = "SUPPLIER"
)

// ApprovalStatus enum constants
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Approval records one sign-off decision gating a target at one workflow
// stage. The target is a tagged variant: Kind discriminates what TargetID
// references, so exactly one target reference exists per row.
// Invariant: at most one PENDING approval per (Kind, TargetID).
type Approval struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         string     `gorm:"type:varchar(20);not null;index:idx_approvals_target" json:"kind"`
	TargetID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_approvals_target" json:"target_id"`
	RequiredRole string     `gorm:"type:varchar(50);not null" json:"required_role"` // minimum rank needed to decide this stage
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ApproverID   *uuid.UUID `gorm:"type:uuid;index" json:"approver_id"`
	Approver     *Account   `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Comments     string     `gorm:"type:text" json:"comments"`
	DecidedAt    *time.Time `json:"decided_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
