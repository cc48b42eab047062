package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateAccount     = "CREATE_ACCOUNT"
	ActionDeactivateAccount = "DEACTIVATE_ACCOUNT"
	ActionRegisterSupplier  = "REGISTER_SUPPLIER"
	ActionCreateRFQ         = "CREATE_RFQ"
	ActionCreateQuotation   = "CREATE_QUOTATION"

	// Approval workflow actions
	ActionSubmitForApproval = "SUBMIT_FOR_APPROVAL"
	ActionApproveStage      = "APPROVE_STAGE"
	ActionRejectStage       = "REJECT_STAGE"
	ActionFinalizeRFQ       = "FINALIZE_RFQ"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  *uuid.UUID `gorm:"type:uuid;index" json:"account_id"` // Nullable gracefully if automated
	Account    *Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
