package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuotationStatus enum constants
const (
	QuotationStatusDraft     = "DRAFT"
	QuotationStatusSubmitted = "SUBMITTED"
	QuotationStatusApproved  = "APPROVED"
	QuotationStatusRejected  = "REJECTED"
)

// Quotation represents a supplier's priced response to an RFQ
type Quotation struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RFQID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_id"`
	RFQ         *RFQ            `gorm:"foreignKey:RFQID" json:"-"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status      string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Note        string          `gorm:"type:text" json:"note"`
	EnteredBy   uuid.UUID       `gorm:"type:uuid;not null" json:"entered_by"`
	Items       []QuotationItem `gorm:"foreignKey:QuotationID" json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (q *Quotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuotationItem prices one RFQ line item
type QuotationItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuotationID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"quotation_id"`
	RFQItemID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_item_id"`
	RFQItem      *RFQItem        `gorm:"foreignKey:RFQItemID" json:"-"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LeadTimeDays int             `gorm:"type:int;default:0" json:"lead_time_days"`
	Note         string          `gorm:"type:text" json:"note"`
}

func (i *QuotationItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
