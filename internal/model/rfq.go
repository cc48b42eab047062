package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RFQStatus enum constants. The set is open: records persisted by newer
// deployments may carry statuses this code does not know. Unknown statuses are
// readable but never advanceable.
const (
	RFQStatusDraft              = "DRAFT"
	RFQStatusSubmitted          = "SUBMITTED"
	RFQStatusAdminApproved      = "ADMIN_APPROVED"
	RFQStatusSuperAdminApproved = "SUPER_ADMIN_APPROVED"
	RFQStatusRejected           = "REJECTED"
	RFQStatusClosed             = "CLOSED"
)

// RFQ represents a Request For Quotation, the root procurement record.
// Retained indefinitely for audit — never hard-deleted.
type RFQ struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RFQCode       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"rfq_code"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Status        string         `gorm:"type:varchar(50);not null;default:'DRAFT';index" json:"status"`
	RequesterID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester     *Account       `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Items         []RFQItem      `gorm:"foreignKey:RFQID" json:"items"`
	Quotations    []Quotation    `gorm:"foreignKey:RFQID" json:"quotations,omitempty"`
	FinalDecision *FinalDecision `gorm:"foreignKey:RFQID" json:"final_decision,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (r *RFQ) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RFQItem represents a line item within an RFQ
type RFQItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RFQID         uuid.UUID `gorm:"type:uuid;not null;index" json:"rfq_id"`
	ItemName      string    `gorm:"type:varchar(255);not null" json:"item_name"`
	Specification string    `gorm:"type:text" json:"specification"`
	Quantity      int       `gorm:"type:int;not null" json:"quantity"`
	Unit          string    `gorm:"type:varchar(50)" json:"unit"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (i *RFQItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
