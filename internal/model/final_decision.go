package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinalDecision is the terminal, itemized financial ruling closing an RFQ.
// Created only once the RFQ has passed both approval tiers; closing the RFQ
// and creating the decision happen in the same transaction.
type FinalDecision struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	RFQID               uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null" json:"rfq_id"`
	DecidedBy           uuid.UUID           `gorm:"type:uuid;not null" json:"decided_by"`
	Decider             *Account            `gorm:"foreignKey:DecidedBy" json:"decider,omitempty"`
	TotalApprovedAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_approved_amount"` // reconciles with the sum of item line totals
	Note                string              `gorm:"type:text" json:"note"`
	Items               []FinalDecisionItem `gorm:"foreignKey:FinalDecisionID" json:"items"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (d *FinalDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// FinalDecisionItem names the winning supplier/quotation and agreed price for
// one RFQ line item
type FinalDecisionItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FinalDecisionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"final_decision_id"`
	RFQItemID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_item_id"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null" json:"supplier_id"`
	QuotationID     uuid.UUID       `gorm:"type:uuid;not null" json:"quotation_id"`
	AgreedUnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"agreed_unit_price"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (i *FinalDecisionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
